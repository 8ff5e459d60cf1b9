package kafka

// DefaultTicketsIssuedTopic carries one message per accepted purchase batch.
const DefaultTicketsIssuedTopic = "tickets.issued"
