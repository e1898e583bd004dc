// Package photos хранит фотографии клиентов в каталоге faces.
// Любое входное изображение приводится к JPEG. Замена фотографии выполняется
// через временный файл: старая фотография переносится в каталог oldFaces
// и никогда не удаляется.
package photos

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	// Регистрация декодера WebP для imaging.Open.
	_ "golang.org/x/image/webp"

	"github.com/magabrotheeeer/gym-manager/internal/lib/sl"
	"github.com/magabrotheeeer/gym-manager/internal/models"
	"github.com/magabrotheeeer/gym-manager/internal/paths"
)

const stampLayout = "20060102_150405"

// Options параметры нормализации изображения.
type Options struct {
	MaxWidth    int // 0: без ограничения
	MaxHeight   int
	JPEGQuality int
}

// Store сохраняет и заменяет фотографии клиентов.
type Store struct {
	dirs paths.Dirs
	opts Options
	log  *slog.Logger
	now  func() time.Time
}

// New создаёт хранилище фотографий поверх каталогов dirs.
func New(dirs paths.Dirs, opts Options, log *slog.Logger) *Store {
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = 90
	}
	return &Store{
		dirs: dirs,
		opts: opts,
		log:  log,
		now:  time.Now,
	}
}

// Save нормализует src и сохраняет его под стандартным именем
// <имя>_<удостоверение>_<метка>.jpg. Существующие файлы не перезаписываются:
// при совпадении имени добавляется суффикс _1, _2, ... Возвращает путь к сохранённому файлу.
func (s *Store) Save(src, fullName string, idCard int64) (string, error) {
	const op = "photos.Save"

	tmp, err := s.Prepare(src)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	dst, err := s.promote(tmp, filepath.Join(s.dirs.Faces, StandardName(fullName, idCard, s.now())))
	if err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("%s: %w: %v", op, models.ErrPhotoIO, err)
	}

	s.log.Info("picture saved", sl.Op(op), slog.String("path", dst))
	return dst, nil
}

// Prepare декодирует src и кодирует его в JPEG во временный файл каталога faces.
// Возвращает путь к временному файлу, который затем передаётся в Commit или Discard.
func (s *Store) Prepare(src string) (string, error) {
	const op = "photos.Prepare"

	tmp, err := s.encodeTemp(src)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return tmp, nil
}

// Commit ставит подготовленный файл tmp на место текущей фотографии oldPath.
//
// Старый файл (если есть) переносится в каталог oldFaces, затем tmp
// переименовывается в итоговый путь. Итоговый путь совпадает с oldPath,
// если тот уже .jpg, иначе используется стандартное имя. Чужие файлы
// в каталоге faces не перезаписываются. Если перенос не удался,
// старая фотография возвращается на место.
func (s *Store) Commit(tmp, oldPath, fullName string, idCard int64) (string, error) {
	const op = "photos.Commit"

	dst := oldPath
	if oldPath == "" || !strings.EqualFold(filepath.Ext(oldPath), ".jpg") {
		dst = filepath.Join(s.dirs.Faces, StandardName(fullName, idCard, s.now()))
	}

	var (
		retired string
		err     error
	)
	if oldPath != "" && exists(oldPath) {
		retired, err = s.retire(oldPath)
		if err != nil {
			_ = os.Remove(tmp)
			return "", fmt.Errorf("%s: %w: %v", op, models.ErrPhotoIO, err)
		}
	}

	final, err := s.promote(tmp, dst)
	if err != nil {
		_ = os.Remove(tmp)
		if retired != "" {
			if restoreErr := os.Rename(retired, oldPath); restoreErr != nil {
				s.log.Error("failed to restore retired picture", sl.Op(op),
					slog.String("path", retired), sl.Err(restoreErr))
			}
		}
		return "", fmt.Errorf("%s: %w: %v", op, models.ErrPhotoIO, err)
	}

	s.log.Info("picture replaced", sl.Op(op),
		slog.String("path", final), slog.String("retired", retired))
	return final, nil
}

// promote переносит tmp в путь dst. Имя сначала занимается через O_EXCL,
// поэтому существующий файл никогда не перезаписывается: если dst занят,
// пробуются <stem>_1<ext>, <stem>_2<ext>, ...
func (s *Store) promote(tmp, dst string) (string, error) {
	dir := filepath.Dir(dst)
	ext := filepath.Ext(dst)
	stem := strings.TrimSuffix(filepath.Base(dst), ext)

	candidate := dst
	for n := 1; ; n++ {
		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			candidate = filepath.Join(dir, stem+"_"+strconv.Itoa(n)+ext)
			continue
		}
		if err != nil {
			return "", err
		}
		_ = f.Close()

		if err := os.Rename(tmp, candidate); err != nil {
			_ = os.Remove(candidate)
			return "", err
		}
		return candidate, nil
	}
}

// Discard удаляет сохранённую или подготовленную фотографию, которая не попала в базу.
func (s *Store) Discard(path string) error {
	const op = "photos.Discard"
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w: %v", op, models.ErrPhotoIO, err)
	}
	return nil
}

// encodeTemp декодирует src с учётом EXIF-ориентации, при необходимости
// уменьшает его и кодирует в JPEG во временный файл каталога faces.
func (s *Store) encodeTemp(src string) (string, error) {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrImage, err)
	}
	img = s.fit(img)

	if err := os.MkdirAll(s.dirs.Faces, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrPhotoIO, err)
	}
	tmp := filepath.Join(s.dirs.Faces, ".tmp_"+uuid.NewString()+".jpg")
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrPhotoIO, err)
	}

	encErr := imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(s.opts.JPEGQuality))
	closeErr := f.Close()
	if encErr != nil || closeErr != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("%w: %v", models.ErrImage, errors.Join(encErr, closeErr))
	}
	return tmp, nil
}

func (s *Store) fit(img image.Image) image.Image {
	if s.opts.MaxWidth <= 0 || s.opts.MaxHeight <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= s.opts.MaxWidth && b.Dy() <= s.opts.MaxHeight {
		return img
	}
	return imaging.Fit(img, s.opts.MaxWidth, s.opts.MaxHeight, imaging.Lanczos)
}

// retire переносит файл в каталог oldFaces под именем
// <stem>__OLD_<метка>[_n]<ext>, не перезаписывая существующие файлы.
func (s *Store) retire(path string) (string, error) {
	if err := os.MkdirAll(s.dirs.Retired, 0o755); err != nil {
		return "", err
	}
	dst := RetiredName(s.dirs.Retired, path, s.now())
	if err := os.Rename(path, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// RetiredName подбирает свободное имя для старой фотографии в каталоге dir.
func RetiredName(dir, path string, at time.Time) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	base := stem + "__OLD_" + at.Format(stampLayout)

	candidate := filepath.Join(dir, base+ext)
	for n := 1; exists(candidate); n++ {
		candidate = filepath.Join(dir, base+"_"+strconv.Itoa(n)+ext)
	}
	return candidate
}

// StandardName возвращает имя файла фотографии для клиента.
func StandardName(fullName string, idCard int64, at time.Time) string {
	return fmt.Sprintf("%s_%d_%s.jpg", SafeName(fullName), idCard, at.Format(stampLayout))
}

// SafeName оставляет в имени только буквы, цифры, пробелы, '_' и '-',
// пробелы заменяются на '_'.
func SafeName(text string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
