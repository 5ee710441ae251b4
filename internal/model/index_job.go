package model

// IndexJob asks the index worker to chunk and embed a guideline document.
type IndexJob struct {
	DocumentID uint `json:"document_id"`
}
