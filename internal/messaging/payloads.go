// Package messaging defines the queue contract between the authoring API
// and the review worker.
package messaging

// ReviewTaskPayload is the message published when a chapter is submitted
// for review. Delivery is at-least-once; the review task is idempotent, so
// re-delivery simply re-evaluates the chapter.
type ReviewTaskPayload struct {
	TaskID    string `json:"taskId"`
	ChapterID string `json:"chapterId"`
}
