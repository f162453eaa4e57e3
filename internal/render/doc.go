// Package render produces the files erpdeploy writes to the host: the
// application service config, the compose stack descriptor and the reverse
// proxy site.
//
// Rendering is pure. Identical parameters always produce byte-identical
// output, which is what makes the writing steps overwrite-safe. Templates are
// embedded in the binary; each typed renderer validates its parameters before
// executing its template.
package render
