// Package media resolves logo URLs against the external image store.
package media

import (
	"regexp"

	"bizbranches/pkg/model"
)

var (
	deliveryPrefix = regexp.MustCompile(`^https?://res\.cloudinary\.com/[^/]+/image/upload/(v?\d+/)?`)
	fileExtension  = regexp.MustCompile(`\.[^/.]+$`)
)

// Resolver builds content-delivery URLs from stored image references.
type Resolver struct {
	cloudName string
}

func NewResolver(cloudName string) *Resolver {
	return &Resolver{cloudName: cloudName}
}

// LogoURL prefers a directly stored URL and otherwise derives a
// fixed-transform delivery URL from the storage reference.
func (r *Resolver) LogoURL(b *model.Business) string {
	if b.LogoURL != "" {
		return b.LogoURL
	}
	return r.CDNURL(b.LogoPublicID)
}

// CDNURL strips any pre-existing delivery-host prefix and file extension
// from publicID, then applies the fixed 200x200 fit transform. Full
// non-Cloudinary URLs pass through unchanged.
func (r *Resolver) CDNURL(publicID string) string {
	if publicID == "" || r.cloudName == "" {
		return ""
	}

	cleaned := deliveryPrefix.ReplaceAllString(publicID, "")
	if cleaned == publicID && (len(publicID) > 4 && publicID[:4] == "http") {
		return publicID
	}
	cleaned = fileExtension.ReplaceAllString(cleaned, "")

	return "https://res.cloudinary.com/" + r.cloudName + "/image/upload/c_fit,w_200,h_200,q_auto,f_auto/" + cleaned
}

// ResolveAll rewrites the logo URL on each listing in place.
func (r *Resolver) ResolveAll(businesses []*model.Business) {
	for _, b := range businesses {
		b.LogoURL = r.LogoURL(b)
	}
}
