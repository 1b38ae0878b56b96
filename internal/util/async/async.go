// Package async provides helpers for fan-out concurrent work.
//
// The cascade deletion of a project runs one cleanup per owned server and
// must wait for every one of them to settle: one server's failure must not
// cancel or abort another's. [RunAllSettled] implements that join.
package async

import "context"

// Task is a named unit of concurrent work.
type Task struct {
	Name string
	Func func(context.Context) error
}

// Result is the settled outcome of a single task.
type Result struct {
	Name string
	Err  error
}

// RunAllSettled starts every task concurrently and waits for all of them to
// finish, regardless of individual failures. It returns a result per task in
// completion order.
func RunAllSettled(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	resultChan := make(chan Result, len(tasks))
	for _, task := range tasks {
		task := task
		go func() {
			resultChan <- Result{Name: task.Name, Err: task.Func(ctx)}
		}()
	}

	results := make([]Result, 0, len(tasks))
	for i := 0; i < len(tasks); i++ {
		results = append(results, <-resultChan)
	}
	return results
}

// Failed returns the subset of results that carry an error.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
