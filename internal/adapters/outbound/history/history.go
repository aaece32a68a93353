package history

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/sdkprobe/sdkprobe/internal/domain"
)

const historyFile = ".sdkprobe/history/runs.json"

// FileHistory implements domain.RunHistory using JSON file storage.
type FileHistory struct{}

func New() *FileHistory {
	return &FileHistory{}
}

// Path returns the history file location for a workspace.
func Path(workspacePath string) string {
	return filepath.Join(workspacePath, filepath.FromSlash(historyFile))
}

func (h *FileHistory) Save(workspacePath string, entry domain.RunEntry) error {
	entries, err := h.Load(workspacePath)
	if err != nil {
		return err
	}

	entries = append(entries, entry)

	fp := Path(workspacePath)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(fp, data, 0644)
}

func (h *FileHistory) Load(workspacePath string) ([]domain.RunEntry, error) {
	data, err := os.ReadFile(Path(workspacePath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.RunEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}
