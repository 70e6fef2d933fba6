// Package mdhtml renders Markdown to HTML fragments for display in a browser
// or webview.
//
// The renderer is a fixed sequence of text passes over an escaped copy of the
// input. Code blocks, code spans and synthesized link/image markup are swapped
// for placeholders early and restored last, so later passes never rewrite
// them. Lists are rebuilt by a small stack machine keyed on indentation.
//
// Core properties:
//   - Total: every input produces output, unknown syntax stays literal
//   - All source text is HTML-escaped exactly once
//   - No shared state between calls
//
// Example:
//
//	html := mdhtml.Render("# Tasks\n\n- [spec](spec.md)\n  - nested\n")
//	fmt.Println(html)
//
// Convert and HTTPConvert add validation, front matter stripping and optional
// sanitizing through RenderOption values.
package mdhtml
