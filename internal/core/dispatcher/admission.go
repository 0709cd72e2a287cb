package dispatcher

import "golang.org/x/sync/semaphore"

// admission 在途操作上限
//
// limit 为 0 时不限；满额时立即失败，不排队。
type admission struct {
	sem   *semaphore.Weighted
	limit int
}

func newAdmission(limit int) *admission {
	a := &admission{limit: limit}
	if limit > 0 {
		a.sem = semaphore.NewWeighted(int64(limit))
	}
	return a
}

func (a *admission) tryAcquire() bool {
	if a.sem == nil {
		return true
	}
	return a.sem.TryAcquire(1)
}

func (a *admission) release() {
	if a.sem == nil {
		return
	}
	a.sem.Release(1)
}
