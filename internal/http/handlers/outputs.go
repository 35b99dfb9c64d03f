package handlers

import (
	"net/http"
	"os"
)

// outputFS serves files only; directory listings are hidden.
type outputFS struct {
	root http.FileSystem
}

func (fs outputFS) Open(name string) (http.File, error) {
	f, err := fs.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

// Outputs serves processor results from OutputDir below prefix.
func (a *App) Outputs(prefix string) http.Handler {
	return http.StripPrefix(prefix, http.FileServer(outputFS{root: http.Dir(a.OutputDir)}))
}
