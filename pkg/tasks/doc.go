// Package tasks is the task_queue_provider contract (§4.1, §4.5): the
// Handle interface, its inline and queued implementations, the payload wire
// codec used at the queued boundary, and the Runtime that binds task
// functions to a handle and enforces fetch_content's dedup rule.
package tasks
