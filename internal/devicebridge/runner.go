package devicebridge

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// Коды завершения, которыми Runner сообщает о сбоях запуска.
const (
	ExitTimeout  = 124
	ExitNotFound = 127
)

// Result результат одного вызова моста.
type Result struct {
	Code   int
	Stdout string
	Stderr string
}

// OK сообщает, что вызов завершился с кодом 0.
func (r Result) OK() bool {
	return r.Code == 0
}

// Runner выполняет команду моста с аргументами args.
// Ошибки запуска не возвращаются, а кодируются в Result.Code.
type Runner interface {
	Run(ctx context.Context, args ...string) Result
}

// ExecRunner запускает внешний бинарник с ограничением по времени на каждый вызов.
type ExecRunner struct {
	Path    string
	Timeout time.Duration
}

// Run выполняет Path с аргументами args. По таймауту возвращается код 124,
// если бинарник не найден, 127.
func (r ExecRunner) Run(ctx context.Context, args ...string) Result {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}
	switch {
	case err == nil:
		return res
	case ctx.Err() != nil:
		return Result{Code: ExitTimeout, Stderr: "timeout"}
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, exec.ErrDot), isNotExist(err):
		return Result{Code: ExitNotFound, Stderr: "bridge binary not found"}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.Code = exitErr.ExitCode()
		return res
	}
	res.Code = ExitNotFound
	res.Stderr = err.Error()
	return res
}
