// Package errutil contains methods to simplify working with error
package errutil

import "io"

// Close closes the closer and sets the error to err if err is nil.
// Meant to be used with defer so errors hidden in Close() don't get
// lost:
//
//	defer errutil.Close(f, &err)
func Close(c io.Closer, err *error) {
	e := c.Close()
	if *err == nil && e != nil {
		*err = e
	}
}
