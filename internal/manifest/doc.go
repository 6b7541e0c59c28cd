// Package manifest validates the manifest document shipped inside a remix
// bundle. A manifest names the source PDF files a user must supply and the
// styles the remote patch service can render them with.
//
// # Manifest Format
//
// Manifests are hand-authored YAML:
//
//	sources:
//	  - file_name: chapter_1.pdf
//	    url: http://example.com/chapter_1.pdf
//	    md5sum: 2b00042f7481c7b056c4b410d28f33cf
//	styles:
//	  - name: Large Print
//	    description: Large print format.
//	    style_sheet: large_print.css
//
// # Usage
//
// Parse an already decoded document:
//
//	m, err := manifest.Parse(doc)
//	if err != nil {
//	    // err reads like "chapter_1.pdf url: 42 is not a string"
//	}
//
// Or decode and parse in one step:
//
//	m, err := manifest.NewLoader().LoadFromBytes(data)
//
// # Error Handling
//
// Structural errors carry the identifying value of the offending entry and
// the field being validated, so authors can find the broken line:
//   - ErrNotObject: top-level value is not a mapping
//   - ErrMissingSources: sources key absent or not a list
//   - ErrMissingStyles: styles key absent or not a list
//   - ErrNotString: a required field is missing or not a string
//   - ErrInvalidFormat: text is not valid YAML
//   - ErrFileNotFound: manifest file does not exist
package manifest
