package server

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed webui/*
var uiFS embed.FS

func (a *App) RegisterWebUI(prefix string) {
	if prefix == "" {
		prefix = "/ui/"
	}
	base := strings.TrimSuffix(prefix, "/")
	slash := base + "/"

	sub, err := fs.Sub(uiFS, "webui")
	if err != nil {
		// no webui in the binary means every UI route would 404/301-loop
		panic(err)
	}

	// /ui -> /ui/
	a.Router.HandleFunc(base, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, slash, http.StatusFound)
	}).Methods(http.MethodGet)

	// /ui/ serves index.html directly, FileServer would redirect in a loop
	a.Router.HandleFunc(slash, func(w http.ResponseWriter, r *http.Request) {
		b, err := fs.ReadFile(sub, "index.html")
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("ui: index.html not embedded; ensure server/webui/* exists and rebuild"))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}).Methods(http.MethodGet)

	// remaining static assets under /ui/
	fileServer := http.StripPrefix(slash, http.FileServer(http.FS(sub)))
	a.Router.PathPrefix(slash).Handler(fileServer)

	// root redirects to the designer
	a.Router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, slash, http.StatusFound)
	})
}
