package api

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
)

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorBody{
			Message: msg,
			Type:    errType,
		},
	})
}

func writeFailure(c *echo.Context, err error) error {
	status, errType := classify(err)
	return writeError(c, status, errType, err.Error())
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, newInvalidRequest(fmt.Sprintf("decode request: %v", err))
	}
	return out, nil
}

// resolvePath maps a request path onto the filesystem. With an empty root
// the path is used as given; otherwise it must be relative and stay inside
// root once symlinks are resolved.
func resolvePath(root, p string) (string, error) {
	if p == "" {
		return "", newInvalidRequest("path is required")
	}
	if root == "" {
		return p, nil
	}
	if filepath.IsAbs(p) {
		return "", newInvalidRequest(fmt.Sprintf("path %q must be relative to the data root", p))
	}
	full := filepath.Join(root, p)
	if !within(root, full) {
		return "", newInvalidRequest(fmt.Sprintf("path %q escapes the data root", p))
	}

	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("resolve data root: %w", err)
	}
	realFull, err := evalExisting(full)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", p, err)
	}
	if !within(realRoot, realFull) {
		return "", newInvalidRequest(fmt.Sprintf("path %q escapes the data root", p))
	}
	return full, nil
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// evalExisting resolves symlinks in the longest existing prefix of p and
// appends the components that do not exist yet.
func evalExisting(p string) (string, error) {
	rest := ""
	for {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			return filepath.Join(resolved, rest), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		if _, lerr := os.Lstat(p); lerr == nil {
			return "", newInvalidRequest(fmt.Sprintf("%s is a dangling symlink", p))
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", err
		}
		rest = filepath.Join(filepath.Base(p), rest)
		p = parent
	}
}
