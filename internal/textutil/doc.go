// Package textutil holds string helpers for deriving file names from
// user-supplied labels such as sample names and input base names.
package textutil
