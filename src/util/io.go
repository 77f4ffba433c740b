package util

import (
	"bufio"
	"errors"
	"os"
	"time"
)

// ReadSource reads source code from the file at opt.Src, or from stdin with a short grace period if no file was
// given (ModeRepl reads its own lines and never calls this). Adapted from the teacher's util.ReadSource, minus
// the parallel output-writer bootstrapping that accompanied it there: this pipeline has a single output
// destination, so there's nothing to fan out to.
func ReadSource(src string) (string, error) {
	if src != "" {
		b, err := os.ReadFile(src)
		return string(b), err
	}

	c := make(chan string, 1)
	cerr := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		text, err := reader.ReadString(0)
		if err != nil && len(text) == 0 {
			cerr <- err
			return
		}
		c <- text
	}()

	select {
	case <-time.After(500 * time.Millisecond):
		return "", errors.New("expected input from stdin, got none")
	case s := <-c:
		return s, nil
	case err := <-cerr:
		return "", err
	}
}
