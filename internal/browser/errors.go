package browser

import "fmt"

// NavigationError indicates the URL could not be loaded.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// NavigationTimeout indicates the ready selector never appeared.
type NavigationTimeout struct {
	URL      string
	Selector string
	Err      error
}

func (e *NavigationTimeout) Error() string {
	return fmt.Sprintf("wait for %q on %s: %v", e.Selector, e.URL, e.Err)
}

func (e *NavigationTimeout) Unwrap() error {
	return e.Err
}
