package domain

// ForumPost is a community forum entry. Posts are never edited or
// deleted; comments are appended in creation order. The positional
// Index is the public address of a post and stays stable for the life
// of the store. ID exists alongside it so future consumers are not
// forced to address posts positionally.
type ForumPost struct {
	ID       PostID
	Index    int
	Author   string
	Title    string
	Content  string
	Comments []string

	CreatedAt Timestamp
}

// ForumStore defines the forum's persistence. Implementations must
// serialize mutations: multiple sessions share one post table, and
// index stability depends on appends never racing.
type ForumStore interface {
	// CreatePost validates that title and content are non-empty,
	// appends a new post with no comments and returns it. The assigned
	// Index equals the previous post count.
	CreatePost(author, title, content string) (*ForumPost, error)

	// AddComment validates that text is non-empty and the index refers
	// to an existing post, then appends the comment to that post.
	AddComment(index int, text string) error

	// Posts returns a snapshot of all posts in creation order.
	Posts() ([]*ForumPost, error)
}
