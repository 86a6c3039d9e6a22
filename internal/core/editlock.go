package core

import "time"

// EditLockWindow is how long after creation a record stays editable.
const EditLockWindow = 48 * time.Hour

// EditLocked reports whether a record may no longer be updated. The lock
// engages strictly after the window elapses: a record exactly 48 hours old
// is still editable. Deletion is never subject to the lock.
func EditLocked(createdAt, now time.Time) bool {
	if createdAt.IsZero() {
		return false
	}
	return now.Sub(createdAt) > EditLockWindow
}
