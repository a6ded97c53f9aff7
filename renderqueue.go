package vkcore

import (
	lin "github.com/xlab/linmath"
)

type RenderCommand struct {
	Model     Renderable
	Transform lin.Mat4x4
}

//RenderQueue collects the draws of one frame in submission order. Scene traversal appends, the
//renderer drains it once per frame. One producer and one consumer on the same thread, no locking.
type RenderQueue struct {
	commands []RenderCommand
}

// Submit appends a draw. The transform is copied.
func (q *RenderQueue) Submit(model Renderable, transform *lin.Mat4x4) {
	q.commands = append(q.commands, RenderCommand{Model: model, Transform: *transform})
}

// Drain hands back every queued command and leaves the queue empty.
func (q *RenderQueue) Drain() []RenderCommand {
	commands := q.commands
	q.commands = nil
	return commands
}

func (q *RenderQueue) Len() int {
	return len(q.commands)
}
