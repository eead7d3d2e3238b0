package queue

// PersistTask asks the worker to download a generated artifact, run the
// requested filter chain, store the result, and insert the gallery row.
type PersistTask struct {
	ImageID        string   `json:"image_id"`
	UserID         string   `json:"user_id"`
	Prompt         string   `json:"prompt"`
	RevisedPrompt  string   `json:"revised_prompt,omitempty"`
	SourceURL      string   `json:"source_url"`
	Quality        string   `json:"quality,omitempty"`
	Size           string   `json:"size,omitempty"`
	Model          string   `json:"model,omitempty"`
	ConversationID string   `json:"conversation_id,omitempty"`
	ParentImageID  string   `json:"parent_image_id,omitempty"`
	Filters        []string `json:"filters,omitempty"`
	TraceID        string   `json:"trace_id,omitempty"`
}
