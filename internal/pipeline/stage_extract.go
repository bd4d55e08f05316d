package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/quillmem/quill/internal/extractor"
)

// derived payload labels.
const (
	LabelExtractedText = "extracted.txt"
	LabelChunkText     = "chunk.txt"
	LabelEmbedding     = "embedding.vec"
)

// ExtractionHandler converts uploaded files to markdown. Documents the
// extractor service cannot handle fall back to a direct text decode or, for
// binary content, a descriptive stub, so ingestion never fails on format.
type ExtractionHandler struct {
	client *extractor.Client
	logger *slog.Logger
}

// NewExtractionHandler creates the extraction step handler. A nil client
// disables the remote service and relies on the fallbacks alone.
func NewExtractionHandler(client *extractor.Client, logger *slog.Logger) *ExtractionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionHandler{client: client, logger: logger}
}

// StepName returns the step identifier.
func (h *ExtractionHandler) StepName() string {
	return StepExtraction
}

// Invoke extracts text from every pending upload, producing one
// extracted-text artifact per file.
func (h *ExtractionHandler) Invoke(ctx context.Context, state *State) (Outcome, error) {
	if len(state.FilesToUpload) == 0 {
		state.Log(StepExtraction, "no files to extract")
		state.UploadComplete = true
		return Success, nil
	}

	// Probe once per invocation; a down service degrades every file to the
	// fallback path instead of probing per file.
	serviceUp := h.client != nil && h.client.Healthy(ctx)
	if h.client != nil && !serviceUp {
		state.Log(StepExtraction, "extractor service unavailable, using fallback extraction")
		h.logger.Warn("extractor service unavailable, falling back",
			"document_id", state.DocumentID)
	}

	existing := existingArtifactIDs(state)

	for i, file := range state.FilesToUpload {
		if err := ctx.Err(); err != nil {
			return TransientError, err
		}

		id := artifactID(state.ExecutionID, StepExtraction, i, file.FileName)
		if existing[id] {
			continue
		}

		text := h.extract(ctx, state, file, serviceUp)

		sum := sha256.Sum256([]byte(text))
		artifact := &Artifact{
			ID:          id,
			Name:        file.FileName,
			Size:        int64(len(file.Bytes)),
			ContentType: file.ContentType,
			Kind:        ArtifactExtractedText,
		}
		artifact.AttachDerived(LabelExtractedText, DerivedFile{
			ParentArtifactID: id,
			ContentSHA256:    hex.EncodeToString(sum[:]),
		})

		state.Context.ExtractedText[id] = text
		state.AddArtifact(artifact)
		state.Log(StepExtraction, fmt.Sprintf("extracted %s (%d bytes)", file.FileName, len(text)))
	}

	state.FilesToUpload = nil
	state.UploadComplete = true
	return Success, nil
}

// extract produces markdown for one file, applying the fallback chain.
// serviceUp carries the invocation's single health probe result.
func (h *ExtractionHandler) extract(ctx context.Context, state *State, file UploadedFile, serviceUp bool) string {
	if serviceUp {
		markdown, err := h.client.Convert(ctx, file.FileName, file.ContentType, file.Bytes)
		if err == nil {
			return markdown
		}
		state.Log(StepExtraction, fmt.Sprintf("conversion failed for %s, using fallback: %v", file.FileName, err))
		h.logger.Warn("conversion failed, using fallback",
			"file", file.FileName,
			"error", err)
	}

	if isTextualMIME(file.ContentType) {
		return strings.ToValidUTF8(string(file.Bytes), "�")
	}
	return binaryStub(file)
}

// isTextualMIME reports whether the content type decodes as plain text.
func isTextualMIME(contentType string) bool {
	mime := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(mime, ";"); idx != -1 {
		mime = strings.TrimSpace(mime[:idx])
	}

	switch {
	case strings.HasPrefix(mime, "text/"):
		return true
	case mime == "application/json", mime == "application/xml", mime == "application/javascript":
		return true
	case strings.Contains(mime, "xml"):
		return true
	}
	return false
}

// binaryStub renders the placeholder markdown for unextractable content.
func binaryStub(file UploadedFile) string {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "unknown"
	}
	return fmt.Sprintf("# %s\n\n**File Type:** %s\n**File Size:** %d bytes\n**Note:** Binary content could not be extracted.",
		file.FileName, contentType, len(file.Bytes))
}

// fileStem strips the extension from a file name.
func fileStem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// existingArtifactIDs indexes the state's artifacts for retry idempotence.
func existingArtifactIDs(state *State) map[string]bool {
	ids := make(map[string]bool, len(state.Files))
	for _, a := range state.Files {
		ids[a.ID] = true
	}
	return ids
}

var _ StepHandler = (*ExtractionHandler)(nil)
