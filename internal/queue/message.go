package queue

// ActionProcessBook asks the worker to enrich a book.
const ActionProcessBook = "processBook"

// Message is the body of a work item on the books queue.
type Message struct {
	Action string `json:"action"`
	BookID string `json:"bookId"`
}

func ProcessBook(bookID string) Message {
	return Message{Action: ActionProcessBook, BookID: bookID}
}
