package cache

import (
	"fmt"

	"github.com/gofrs/uuid"
)

// Key fingerprints for cached responses.
//
// Collection keys embed the owner and every filter/pagination parameter, so
// any change to the view yields a distinct key and the whole family can be
// invalidated with TaskListPattern. Single-task keys are scoped by id only;
// callers re-check ownership against the cached payload.

func TaskKey(id uuid.UUID) string {
	return fmt.Sprintf("task:%s", id.String())
}

func TaskListKey(ownerID uuid.UUID, page, perPage int, status, priority string, archived bool) string {
	return fmt.Sprintf("tasks:user:%s:p%d:pp%d:s%s:pr%s:a%t",
		ownerID.String(), page, perPage, status, priority, archived)
}

// TaskListPattern matches every cached task listing for the owner.
func TaskListPattern(ownerID uuid.UUID) string {
	return fmt.Sprintf("tasks:user:%s:*", ownerID.String())
}
