// Package paths определяет расположение рабочих каталогов приложения:
// базы данных, фотографий клиентов, архива старых фотографий и входящих снимков с телефона.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	AppDirName   = "GymSoftware"
	DatabaseFile = "gym.db"
)

// Dirs набор рабочих каталогов.
type Dirs struct {
	Root    string // Корень данных приложения
	Faces   string // Текущие фотографии клиентов
	Retired string // Заменённые фотографии, никогда не удаляются
	Inbox   string // Снимки, скачанные с телефона
}

// New строит набор каталогов от корня root.
func New(root string) Dirs {
	faces := filepath.Join(root, "faces")
	return Dirs{
		Root:    root,
		Faces:   faces,
		Retired: filepath.Join(faces, "oldFaces"),
		Inbox:   filepath.Join(root, "phone_inbox"),
	}
}

// Ensure создаёт каталоги, если их нет.
func (d Dirs) Ensure() error {
	const op = "paths.Ensure"
	for _, dir := range []string{d.Root, d.Faces, d.Retired, d.Inbox} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// DocumentsDir возвращает каталог документов пользователя.
// XDG_DOCUMENTS_DIR имеет приоритет, иначе ~/Documents.
func DocumentsDir() string {
	if dir := os.Getenv("XDG_DOCUMENTS_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "Documents"
	}
	return filepath.Join(home, "Documents")
}

// DefaultDataDir корень данных по умолчанию: <Documents>/GymSoftware.
func DefaultDataDir() string {
	return filepath.Join(DocumentsDir(), AppDirName)
}
