//go:build !dev

package resources

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
)

//go:embed static
var staticFS embed.FS

var (
	fingerprintMu sync.Mutex
	fingerprints  = map[string]string{}
)

// Handler serves the embedded static files. URLs built by StaticPath carry a
// content fingerprint, so responses can be cached for good.
func Handler(logger *slog.Logger) http.Handler {
	fsys, _ := fs.Sub(staticFS, "static")
	fileServer := http.FileServer(http.FS(fsys))
	logger.Debug("static assets served from binary")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("v") {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}
		http.StripPrefix(Prefix, fileServer).ServeHTTP(w, r)
	})
}

// StaticPath returns the URL path for a static asset with a fingerprint of
// its content appended. Unknown assets get a bare path.
func StaticPath(path string) string {
	fingerprintMu.Lock()
	defer fingerprintMu.Unlock()

	if v, ok := fingerprints[path]; ok {
		return Prefix + path + v
	}
	v := ""
	if data, err := staticFS.ReadFile("static/" + path); err == nil {
		sum := sha256.Sum256(data)
		v = "?v=" + hex.EncodeToString(sum[:4])
	}
	fingerprints[path] = v
	return Prefix + path + v
}
