package cache

import (
	"github.com/google/btree"
)

const volumeTreeDegree = 32

// companyVolumeItem orders companies by combined volume. The company name
// breaks ties so each company owns exactly one item even when volumes repeat.
type companyVolumeItem struct {
	Volume  uint64
	Company string
}

func (c *companyVolumeItem) Less(than btree.Item) bool {
	other := than.(*companyVolumeItem)
	if c.Volume != other.Volume {
		return c.Volume < other.Volume
	}
	return c.Company < other.Company
}

// volumeTree is the per-security order statistic over company volumes.
type volumeTree struct {
	tree *btree.BTree
}

func newVolumeTree() *volumeTree {
	return &volumeTree{tree: btree.New(volumeTreeDegree)}
}

func (v *volumeTree) insert(company string, volume uint64) {
	if volume == 0 {
		return
	}
	v.tree.ReplaceOrInsert(&companyVolumeItem{Volume: volume, Company: company})
}

func (v *volumeTree) remove(company string, volume uint64) {
	if volume == 0 {
		return
	}
	v.tree.Delete(&companyVolumeItem{Volume: volume, Company: company})
}

func (v *volumeTree) max() uint64 {
	item := v.tree.Max()
	if item == nil {
		return 0
	}
	return item.(*companyVolumeItem).Volume
}

func (v *volumeTree) len() int {
	return v.tree.Len()
}
