package application

import (
	"io"

	"github.com/sdkprobe/sdkprobe/internal/domain"
)

// WriteService emits the metadata document of a run.
type WriteService struct {
	writer domain.MetadataWriter
}

func NewWriteService(writer domain.MetadataWriter) *WriteService {
	return &WriteService{writer: writer}
}

// Write replaces path atomically, or renders to w when path is empty.
// Failures are *domain.IoError.
func (s *WriteService) Write(r *domain.AnalysisResult, path string, w io.Writer) error {
	if path != "" {
		return s.writer.WriteFile(path, r)
	}
	data, err := s.writer.Render(r)
	if err != nil {
		return &domain.IoError{Path: "-", Err: err}
	}
	if _, err := w.Write(data); err != nil {
		return &domain.IoError{Path: "-", Err: err}
	}
	return nil
}
