package waitqueue

import (
	"context"
	"sync"

	"github.com/gtidcore/gtidcore/gtid"
	"github.com/gtidcore/gtidcore/repl"
)

// WaitForPos implements the exposed wait_for_pos API: the wait is
// satisfied when every domain listed in gtidListText has highest_seq_no >=
// its listed seq. A parse error is returned as-is (callers map it to
// ParseError); otherwise the aggregate status is the worst of the
// per-domain outcomes, in priority Cancelled > Timeout > Reached.
func (r *Registry) WaitForPos(ctx context.Context, session repl.Session, gtidListText string) (Status, error) {
	list, err := gtid.Parse(gtidListText)
	if err != nil {
		return Reached, err
	}
	if len(list) == 0 {
		return Reached, nil
	}

	statuses := make([]Status, len(list))
	var wg sync.WaitGroup
	wg.Add(len(list))
	for i, target := range list {
		go func(i int, target gtid.ID) {
			defer wg.Done()
			status, _ := r.Register(ctx, session, target)
			statuses[i] = status
		}(i, target)
	}
	wg.Wait()

	return worstStatus(statuses), nil
}

func worstStatus(statuses []Status) Status {
	worst := Reached
	for _, s := range statuses {
		switch {
		case s == Cancelled:
			return Cancelled
		case s == Timeout && worst == Reached:
			worst = Timeout
		}
	}
	return worst
}
