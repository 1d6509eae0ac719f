package workers

import (
	"context"
	"log"
)

type GenericWorker[T any] struct {
	messages chan []byte
	handler  WorkerHandler[T]
}

type Worker interface {
	Start(ctx context.Context)
}

func NewGenericWorker[T any](messages chan []byte, handler WorkerHandler[T]) *GenericWorker[T] {
	return &GenericWorker[T]{
		messages: messages,
		handler:  handler,
	}
}

func (w *GenericWorker[T]) Start(ctx context.Context) {
	log.Printf("🚀 %sWorker started", w.handler.Type())

	for {
		select {
		case value := <-w.messages:
			item, err := w.handler.Decode(nil, value)
			if err != nil {
				log.Printf("%sWorker decode error: %v", w.handler.Type(), err)
				continue
			}
			if err := w.handler.Apply(ctx, item); err != nil {
				log.Printf("%sWorker error: %v", w.handler.Type(), err)
			}

		case <-ctx.Done():
			log.Printf("%sWorker stopped", w.handler.Type())
			return
		}
	}
}
