package comm

import (
	"errors"

	"github.com/arloliu/stencil/types"
)

// request is a types.Request completed by a background send.
type request struct {
	done chan struct{}
	err  error
}

var _ types.Request = (*request)(nil)

func newRequest() *request {
	return &request{done: make(chan struct{})}
}

func completedRequest(err error) *request {
	r := newRequest()
	r.complete(err)

	return r
}

func (r *request) complete(err error) {
	r.err = err
	close(r.done)
}

// Wait blocks until the send completes.
func (r *request) Wait() error {
	<-r.done

	return r.err
}

// WaitAll waits for every request and joins their errors.
//
// Every request is waited for even after a failure, so no send outlives the call.
//
// Parameters:
//   - reqs: Requests returned by Isend
//
// Returns:
//   - error: Joined send errors, nil if all succeeded
func WaitAll(reqs ...types.Request) error {
	var errs []error
	for _, r := range reqs {
		if err := r.Wait(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
