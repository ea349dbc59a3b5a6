package httpx

import (
	"fmt"
	"net/http"
)

// CachePublic marks a read-mostly response as shared-cacheable with a
// stale-while-revalidate grace window, in seconds.
func CachePublic(w http.ResponseWriter, maxAge, staleWhileRevalidate int) {
	w.Header().Set("Cache-Control",
		fmt.Sprintf("s-maxage=%d, stale-while-revalidate=%d", maxAge, staleWhileRevalidate))
}

// NoStore disables caching entirely. Used on write endpoints and review
// reads so clients never see stale moderation or rating state.
func NoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
}
