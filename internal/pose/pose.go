// Package pose turns per-bone pose transforms into skin matrices and applies
// them to skinned vertices.
package pose

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"heatskin-renderer/internal/mathutil"
	"heatskin-renderer/internal/skeleton"
)

// MissingSkinMatrixError reports a bone composed before its parent.
type MissingSkinMatrixError struct {
	Bone   string
	Parent string
}

func (e *MissingSkinMatrixError) Error() string {
	return fmt.Sprintf("pose: bone %q composed before parent %q", e.Bone, e.Parent)
}

// composer holds the skin matrices of one evaluation.
type composer struct {
	sk    *skeleton.Skeleton
	skins []mathutil.Mat4
	done  []bool
}

func newComposer(sk *skeleton.Skeleton) (*composer, error) {
	if sk == nil || sk.Len() == 0 {
		return nil, skeleton.ErrEmptySkeleton
	}
	return &composer{
		sk:    sk,
		skins: make([]mathutil.Mat4, sk.Len()),
		done:  make([]bool, sk.Len()),
	}, nil
}

func (c *composer) compose(i int) error {
	b := &c.sk.Bones[i]
	local := b.Pose.Mul4(b.InvRest)
	if b.IsRoot() {
		c.skins[i] = local
	} else {
		if !c.done[b.Parent] {
			return &MissingSkinMatrixError{Bone: b.Name, Parent: c.sk.Bones[b.Parent].Name}
		}
		c.skins[i] = c.skins[b.Parent].Mul4(local)
	}
	c.done[i] = true
	return nil
}

// ComposeSkinMatrices evaluates the skin matrix of every bone from the
// current poses, parents before children. The result is indexed by bone ID.
func ComposeSkinMatrices(sk *skeleton.Skeleton) ([]mathutil.Mat4, error) {
	return composeInOrder(sk, sk.Order())
}

// composeInOrder composes bones in the given order. A parent missing from
// the prefix of order fails rather than reading an unset matrix.
func composeInOrder(sk *skeleton.Skeleton, order []int) ([]mathutil.Mat4, error) {
	c, err := newComposer(sk)
	if err != nil {
		return nil, err
	}
	for _, i := range order {
		if err := c.compose(i); err != nil {
			return nil, err
		}
	}
	return c.skins, nil
}

// ComposeWaves is ComposeSkinMatrices with the bones of each depth level
// composed concurrently. Levels run in sequence.
func ComposeWaves(ctx context.Context, sk *skeleton.Skeleton) ([]mathutil.Mat4, error) {
	c, err := newComposer(sk)
	if err != nil {
		return nil, err
	}

	for _, wave := range sk.Waves() {
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.GOMAXPROCS(0))
		for _, i := range wave {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				return c.compose(i)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	return c.skins, nil
}
