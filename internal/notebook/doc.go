// Package notebook serves the markdown notebook widget. The markdown lives in
// the widget's "content" property; reads render it to HTML with goldmark.
package notebook
