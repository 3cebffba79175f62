package models

type ModelsGetResponse struct {
	Models []Model `json:"models"`
}

type Model struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}
