package domain

// RecipientVariables maps a recipient address to its substitution values.
type RecipientVariables map[string]map[string]any

// CustomEmail is a message with an inline HTML and/or text body.
type CustomEmail struct {
	Recipients         []string           `json:"recipients" validate:"required,min=1,dive,required"`
	Subject            string             `json:"subject" validate:"required"`
	HTML               string             `json:"html" validate:"required_without=Text"`
	Text               string             `json:"text" validate:"required_without=HTML"`
	From               string             `json:"from"`
	ReplyTo            string             `json:"replyTo"`
	Variables          map[string]any     `json:"variables"`
	RecipientVariables RecipientVariables `json:"recipientVariables"`
}

// TemplateEmail is a message rendered by the provider from a stored template.
type TemplateEmail struct {
	Recipients         []string           `json:"recipients" validate:"required,min=1,dive,required"`
	Template           string             `json:"template" validate:"required"`
	Subject            string             `json:"subject"`
	From               string             `json:"from"`
	ReplyTo            string             `json:"replyTo"`
	Variables          map[string]any     `json:"variables"`
	RecipientVariables RecipientVariables `json:"recipientVariables"`
}
