package cacheaside

// Region names. Each read operation owns one region and the region name is
// the first segment of every key it produces.
const (
	RegionTaskByID     = "task-by-id"
	RegionTasksByOwner = "tasks-by-owner"
	RegionTaskCount    = "task-count"
	RegionUserByID     = "user-by-id"
)

// Lookup names one cached read.
type Lookup struct {
	Region string
	Args   []any
	// Group, when set, is the KeyIndex group the key is tracked under.
	Group string
}

// TaskByID is the lookup for a single task.
func (p *Policy) TaskByID(id int64) Lookup {
	return Lookup{Region: RegionTaskByID, Args: []any{id}}
}

// TasksByOwner is the lookup for one pagination window. The window must
// already be normalised; its values are part of the key.
func (p *Policy) TasksByOwner(owner int64, limit, offset int) Lookup {
	return Lookup{
		Region: RegionTasksByOwner,
		Args:   []any{owner, limit, offset},
		Group:  p.OwnerWindows(owner),
	}
}

// TaskCount is the lookup for an owner's task count.
func (p *Policy) TaskCount(owner int64) Lookup {
	return Lookup{Region: RegionTaskCount, Args: []any{owner}}
}

// UserByID is the lookup for a single user.
func (p *Policy) UserByID(id int64) Lookup {
	return Lookup{Region: RegionUserByID, Args: []any{id}}
}

// OwnerWindows is the index group holding every cached window of owner.
func (p *Policy) OwnerWindows(owner int64) string {
	return p.keys.SerializeKey(RegionTasksByOwner, owner)
}

// Key returns the cache key for l.
func (p *Policy) Key(l Lookup) string {
	return p.keys.SerializeKey(l.Region, l.Args...)
}
