package bedrockchat

var Version = "v0.1.0"
