// Package manage describes the navigation of the management area.
package manage
