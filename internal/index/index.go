package index

// PostIndex is the read model consumed by the post service.
type PostIndex interface {
	UpsertPost(p PostRow, body string) error
	DeletePost(slug string) error
	GetChecksum(slug string) (string, error)
	AllChecksums() (map[string]string, error)
	ListPosts(f Filter) ([]PostRow, error)
	Tags() ([]string, error)
	Difficulties() ([]string, error)
	Close() error
}

var _ PostIndex = (*DB)(nil)
