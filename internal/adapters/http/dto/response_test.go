package dto_test

import (
	"encoding/json"
	"testing"

	"github.com/tdd/todo-app/internal/adapters/http/dto"
	"github.com/tdd/todo-app/internal/domain/task"
)

func TestToTaskResponse_JSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		task task.Task
		want string
	}{
		{
			name: "persisted task",
			task: task.Task{ID: 7, Title: "Test Title", Description: "Test Description"},
			want: `{"id":7,"title":"Test Title","description":"Test Description"}`,
		},
		{
			name: "zero id omitted",
			task: task.Task{Title: "Test Title", Description: "Test Description"},
			want: `{"title":"Test Title","description":"Test Description"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := json.Marshal(dto.ToTaskResponse(&tt.task))
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("JSON = %s, want %s", got, tt.want)
			}
		})
	}
}
