package proxy

import (
	"fmt"
	"math/rand/v2"
)

// RandomPicker 在闭区间 [minID, maxID] 内均匀选择资源 id。
type RandomPicker struct {
	resource string
	minID    int
	maxID    int
	intN     func(n int) int
}

// NewRandomPicker 构造选择器；区间非法时交换或收敛到 minID。
func NewRandomPicker(resource string, minID, maxID int) *RandomPicker {
	if maxID < minID {
		minID, maxID = maxID, minID
	}
	return &RandomPicker{
		resource: resource,
		minID:    minID,
		maxID:    maxID,
		intN:     rand.IntN,
	}
}

// ID returns a uniformly chosen id.
func (p *RandomPicker) ID() int {
	return p.minID + p.intN(p.maxID-p.minID+1)
}

// Path returns `/<resource>/<id>` for a freshly chosen id.
func (p *RandomPicker) Path() string {
	return fmt.Sprintf("/%s/%d", p.resource, p.ID())
}
