package mail

type NotificationEmailData struct {
	Title   string
	Message string
	Link    string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	BaseURL  string // joined with the notification link; links are omitted when empty

	dialer dialer
}
