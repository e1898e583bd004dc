// Package devicebridge получает снимки с телефона через внешний мост (adb).
// Все вызовы короткие и ограничены таймаутом, ожидание нового снимка
// выполняется опросом с фиксированным интервалом.
package devicebridge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/gym-manager/internal/lib/sl"
)

// EnvPath переменная окружения с явным путём к бинарнику моста.
const EnvPath = "ADB_PATH"

// State состояние моста для отображения оператору.
type State string

const (
	StateBridgeMissing State = "bridge_missing"
	StateNoDevice      State = "waiting_for_device"
	StateNoFolder      State = "waiting_for_folder"
	StateReady         State = "ready"
)

// Status текущее состояние моста и каталога снимков на телефоне.
type Status struct {
	State     State  `json:"state"`
	RemoteDir string `json:"remote_dir"`
	Message   string `json:"message"`
}

// ErrPullFailed возвращается, если снимок не удалось скачать с телефона.
var ErrPullFailed = errors.New("failed to pull picture from device")

// Options параметры моста.
type Options struct {
	RemoteDir    string
	InboxDir     string
	PollInterval time.Duration
}

// Bridge выполняет операции с телефоном через Runner.
type Bridge struct {
	runner Runner
	opts   Options
	log    *slog.Logger
}

// New создаёт мост поверх runner.
func New(runner Runner, opts Options, log *slog.Logger) *Bridge {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	return &Bridge{
		runner: runner,
		opts:   opts,
		log:    log,
	}
}

// DeviceOK проверяет, что телефон подключён и авторизован.
func (b *Bridge) DeviceOK(ctx context.Context) bool {
	res := b.runner.Run(ctx, "get-state")
	return res.OK() && res.Stdout == "device"
}

// DirExists проверяет наличие каталога на телефоне.
func (b *Bridge) DirExists(ctx context.Context, dir string) bool {
	res := b.runner.Run(ctx, "shell", fmt.Sprintf("[ -d '%s' ] && echo OK || echo NO", dir))
	return res.OK() && strings.Contains(res.Stdout, "OK")
}

// NewestImage возвращает путь к самому новому .jpg в каталоге dir
// или пустую строку, если снимков нет.
func (b *Bridge) NewestImage(ctx context.Context, dir string) string {
	res := b.runner.Run(ctx, "shell", fmt.Sprintf("ls -1t %s/*.jpg 2>/dev/null", dir))
	if !res.OK() || res.Stdout == "" {
		return ""
	}
	first, _, _ := strings.Cut(res.Stdout, "\n")
	return strings.TrimSpace(first)
}

// Pull скачивает remote в каталог destDir под уникальным именем
// и возвращает локальный путь.
func (b *Bridge) Pull(ctx context.Context, remote, destDir string) (string, error) {
	const op = "devicebridge.Pull"

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	target := UniquePath(destDir, path.Base(remote))
	res := b.runner.Run(ctx, "pull", remote, target)
	if !res.OK() {
		return "", fmt.Errorf("%s: %w: code %d: %s", op, ErrPullFailed, res.Code, res.Stderr)
	}
	if _, err := os.Stat(target); err != nil {
		return "", fmt.Errorf("%s: %w: %v", op, ErrPullFailed, err)
	}
	return target, nil
}

// Status проверяет мост, телефон и каталог снимков по очереди.
func (b *Bridge) Status(ctx context.Context) Status {
	st := Status{RemoteDir: b.opts.RemoteDir}
	if res := b.runner.Run(ctx, "version"); res.Code == ExitNotFound {
		st.State = StateBridgeMissing
		st.Message = "Bridge binary not found. Bundle adb next to the executable or set " + EnvPath + "."
		return st
	}
	if !b.DeviceOK(ctx) {
		st.State = StateNoDevice
		st.Message = "Waiting for device (USB debugging on and authorized?)"
		return st
	}
	if !b.DirExists(ctx, b.opts.RemoteDir) {
		st.State = StateNoFolder
		st.Message = "Waiting for folder on phone: " + b.opts.RemoteDir
		return st
	}
	st.State = StateReady
	st.Message = "Waiting for a picture. Open the camera and take a photo."
	return st
}

// Capture запоминает самый новый снимок на телефоне и опрашивает каталог,
// пока не появится другой. Новый снимок скачивается в каталог входящих,
// возвращается локальный путь. Ожидание прерывается отменой ctx.
func (b *Bridge) Capture(ctx context.Context) (string, error) {
	const op = "devicebridge.Capture"
	log := b.log.With(sl.Op(op))

	baseline := b.NewestImage(ctx, b.opts.RemoteDir)
	log.Debug("capture baseline", slog.String("newest", baseline))

	ticker := time.NewTicker(b.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%s: %w", op, ctx.Err())
		case <-ticker.C:
		}

		if !b.DeviceOK(ctx) || !b.DirExists(ctx, b.opts.RemoteDir) {
			continue
		}
		current := b.NewestImage(ctx, b.opts.RemoteDir)
		if current == "" || current == baseline {
			continue
		}

		local, err := b.Pull(ctx, current, b.opts.InboxDir)
		if err != nil {
			log.Error("failed to pull picture", slog.String("remote", current), sl.Err(err))
			return "", fmt.Errorf("%s: %w", op, err)
		}
		log.Info("picture received", slog.String("remote", current), slog.String("local", local))
		return local, nil
	}
}

// UniquePath возвращает путь name в dir; если файл уже есть, добавляет _1, _2, ...
func UniquePath(dir, name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	target := filepath.Join(dir, name)
	for i := 1; fileExists(target); i++ {
		target = filepath.Join(dir, stem+"_"+strconv.Itoa(i)+ext)
	}
	return target
}

// ResolvePath находит бинарник моста: переменная ADB_PATH, путь из конфига,
// каталог исполняемого файла, затем PATH. Если ничего не найдено,
// возвращается имя "adb", и вызовы завершатся кодом 127.
func ResolvePath(configured string) string {
	if p := os.Getenv(EnvPath); p != "" && fileExists(p) {
		return p
	}
	if configured != "" && fileExists(configured) {
		return configured
	}
	name := "adb"
	if runtime.GOOS == "windows" {
		name = "adb.exe"
	}
	if exe, err := os.Executable(); err == nil {
		base := filepath.Dir(exe)
		for _, cand := range []string{filepath.Join(base, name), filepath.Join(base, "adb", name)} {
			if fileExists(cand) {
				return cand
			}
		}
	}
	if p, err := exec.LookPath(name); err == nil {
		return p
	}
	return name
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
