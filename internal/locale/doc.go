// Package locale lists the supported interface languages and resolves the
// language of a request from a code or an Accept-Language header.
package locale
