package llm

import "context"

// TableRequest carries one image and the instruction to read it.
type TableRequest struct {
	Image    []byte
	MIMEType string
	Prompt   string
}

// TableReader is the vision interface the drawing extractor depends on.
// It returns the model's raw text; callers parse it.
type TableReader interface {
	ReadTable(ctx context.Context, req TableRequest) (string, error)
	Name() string
}
