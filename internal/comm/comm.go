// Package comm is the message-passing substrate for the distributed engines.
//
// A group of P participants runs as P goroutines in one process, one rank per
// goroutine. Participants exchange data only through the substrate: blocking
// and non-blocking broadcast, barrier, integer all-reduce, and point-to-point
// send/receive with a single implicit tag. Every collective must be reached
// by every rank in the same order; the substrate does not detect mismatched
// schedules, it deadlocks on them exactly like its message-passing ancestors.
//
// A participant failure cancels the whole group: every blocked operation
// returns a GROUP_ABORTED error and Run reports the first failure.
package comm

import (
	"context"

	"golang.org/x/sync/errgroup"

	"seqclust/pkg/apperror"
)

// Comm is one participant's handle on the group.
type Comm struct {
	rank int
	g    *group
}

type group struct {
	size int
	ctx  context.Context

	// one mailbox per (src, dst) pair and traffic class
	coll  [][]*mailbox[[]int32] // broadcast payloads
	bytes [][]*mailbox[[]byte]  // byte broadcast payloads
	ptp   [][]*mailbox[[]int32] // point-to-point payloads

	// all-reduce plumbing: contributions flow to rank 0, results flow back
	red []*mailbox[int64]
	rel []*mailbox[int64]
}

func newGroup(ctx context.Context, size int) *group {
	g := &group{
		size:  size,
		ctx:   ctx,
		coll:  make([][]*mailbox[[]int32], size),
		bytes: make([][]*mailbox[[]byte], size),
		ptp:   make([][]*mailbox[[]int32], size),
		red:   make([]*mailbox[int64], size),
		rel:   make([]*mailbox[int64], size),
	}
	for src := 0; src < size; src++ {
		g.coll[src] = make([]*mailbox[[]int32], size)
		g.bytes[src] = make([]*mailbox[[]byte], size)
		g.ptp[src] = make([]*mailbox[[]int32], size)
		for dst := 0; dst < size; dst++ {
			g.coll[src][dst] = newMailbox[[]int32]()
			g.bytes[src][dst] = newMailbox[[]byte]()
			g.ptp[src][dst] = newMailbox[[]int32]()
		}
		g.red[src] = newMailbox[int64]()
		g.rel[src] = newMailbox[int64]()
	}
	return g
}

// Run executes body once per rank on a fresh group of p participants and
// blocks until all of them finish. The first error cancels the group and is
// returned; the remaining participants unblock with a GROUP_ABORTED error.
func Run(ctx context.Context, p int, body func(c *Comm) error) error {
	if p < 1 {
		return apperror.ErrNoParticipants
	}

	eg, egCtx := errgroup.WithContext(ctx)
	g := newGroup(egCtx, p)

	for rank := 0; rank < p; rank++ {
		c := &Comm{rank: rank, g: g}
		eg.Go(func() error {
			return body(c)
		})
	}

	return eg.Wait()
}

// Rank returns this participant's rank in [0, Size).
func (c *Comm) Rank() int { return c.rank }

// Size returns the number of participants in the group.
func (c *Comm) Size() int { return c.g.size }

// IsCoordinator reports whether this participant is rank 0.
func (c *Comm) IsCoordinator() bool { return c.rank == 0 }

func (c *Comm) abortErr(err error) error {
	return apperror.Wrap(err, apperror.CodeGroupAborted, "participant group aborted")
}

func (c *Comm) checkRank(r int, field string) error {
	if r < 0 || r >= c.g.size {
		return apperror.Newf(apperror.CodeRankMismatch, "%s %d outside group of size %d", field, r, c.g.size)
	}
	return nil
}

// Bcast replicates the root's buffer to every rank. When it returns, buf
// holds the root's payload on all participants.
func (c *Comm) Bcast(buf []int32, root int) error {
	if err := c.checkRank(root, "root"); err != nil {
		return err
	}

	if c.rank == root {
		payload := append([]int32(nil), buf...)
		for dst := 0; dst < c.g.size; dst++ {
			if dst != root {
				c.g.coll[root][dst].push(payload)
			}
		}
		return nil
	}

	data, err := c.g.coll[root][c.rank].pop(c.g.ctx)
	if err != nil {
		return c.abortErr(err)
	}
	if len(data) != len(buf) {
		return apperror.Newf(apperror.CodeSizeMismatch, "broadcast of %d cells into buffer of %d", len(data), len(buf))
	}
	copy(buf, data)
	return nil
}

// BcastBytes is Bcast for byte payloads (sequence corpus replication).
func (c *Comm) BcastBytes(buf []byte, root int) error {
	if err := c.checkRank(root, "root"); err != nil {
		return err
	}

	if c.rank == root {
		payload := append([]byte(nil), buf...)
		for dst := 0; dst < c.g.size; dst++ {
			if dst != root {
				c.g.bytes[root][dst].push(payload)
			}
		}
		return nil
	}

	data, err := c.g.bytes[root][c.rank].pop(c.g.ctx)
	if err != nil {
		return c.abortErr(err)
	}
	if len(data) != len(buf) {
		return apperror.Newf(apperror.CodeSizeMismatch, "broadcast of %d bytes into buffer of %d", len(data), len(buf))
	}
	copy(buf, data)
	return nil
}

// Ibcast posts a non-blocking broadcast rooted at root. The root's payload is
// snapshotted at post time; receivers copy it into buf when the returned
// request completes. Requests posted by one rank complete in post order.
func (c *Comm) Ibcast(buf []int32, root int) (*Request, error) {
	if err := c.checkRank(root, "root"); err != nil {
		return nil, err
	}

	if c.rank == root {
		payload := append([]int32(nil), buf...)
		for dst := 0; dst < c.g.size; dst++ {
			if dst != root {
				c.g.coll[root][dst].push(payload)
			}
		}
		// The send side completes at post time.
		return &Request{}, nil
	}

	return &Request{complete: func() error {
		data, err := c.g.coll[root][c.rank].pop(c.g.ctx)
		if err != nil {
			return c.abortErr(err)
		}
		if len(data) != len(buf) {
			return apperror.Newf(apperror.CodeSizeMismatch, "broadcast of %d cells into buffer of %d", len(data), len(buf))
		}
		copy(buf, data)
		return nil
	}}, nil
}

// Send transmits buf to dst on the point-to-point channel.
func (c *Comm) Send(buf []int32, dst int) error {
	if err := c.checkRank(dst, "destination"); err != nil {
		return err
	}
	c.g.ptp[c.rank][dst].push(append([]int32(nil), buf...))
	return nil
}

// Recv fills buf with the next point-to-point payload from src.
func (c *Comm) Recv(buf []int32, src int) error {
	if err := c.checkRank(src, "source"); err != nil {
		return err
	}
	data, err := c.g.ptp[src][c.rank].pop(c.g.ctx)
	if err != nil {
		return c.abortErr(err)
	}
	if len(data) != len(buf) {
		return apperror.Newf(apperror.CodeSizeMismatch, "received %d cells into buffer of %d", len(data), len(buf))
	}
	copy(buf, data)
	return nil
}

// AllreduceSum sums v across all ranks; every rank receives the total.
func (c *Comm) AllreduceSum(v int64) (int64, error) {
	if c.rank == 0 {
		total := v
		for src := 1; src < c.g.size; src++ {
			part, err := c.g.red[src].pop(c.g.ctx)
			if err != nil {
				return 0, c.abortErr(err)
			}
			total += part
		}
		for dst := 1; dst < c.g.size; dst++ {
			c.g.rel[dst].push(total)
		}
		return total, nil
	}

	c.g.red[c.rank].push(v)
	total, err := c.g.rel[c.rank].pop(c.g.ctx)
	if err != nil {
		return 0, c.abortErr(err)
	}
	return total, nil
}

// Barrier blocks until every rank has reached it.
func (c *Comm) Barrier() error {
	_, err := c.AllreduceSum(0)
	return err
}

// ChunkRange returns the contiguous range [start, end) of n items assigned to
// rank out of size participants, using ceil(n/size) chunking. The last
// non-empty range may be shorter than the chunk, and ranks whose start falls
// at or past n get an empty range.
func ChunkRange(n, size, rank int) (int, int) {
	chunk := (n + size - 1) / size
	start := rank * chunk
	end := start + chunk
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	return start, end
}
