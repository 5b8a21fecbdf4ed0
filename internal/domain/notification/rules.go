package notification

import "adminhub/internal/domain"

type rule struct {
	kind     string
	priority Priority
	// clientMessage is shown on the client copy; the admin copy is built from the title.
	clientMessage string
}

// ruleFor is the event type to notification table. Types that return false are
// deliberately not notification-worthy.
func ruleFor(t domain.EventType) (rule, bool) {
	switch t {
	case domain.EventProposalSent:
		return rule{"proposal_sent", PriorityNormal, "You have received a new proposal."}, true
	case domain.EventProposalViewed:
		return rule{"proposal_viewed", PriorityLow, "Your proposal was opened."}, true
	case domain.EventProposalAccepted:
		return rule{"proposal_accepted", PriorityHigh, "Your proposal acceptance has been recorded."}, true
	case domain.EventProposalDeclined:
		return rule{"proposal_declined", PriorityNormal, "Your proposal response has been recorded."}, true
	case domain.EventInvoiceSent:
		return rule{"invoice_sent", PriorityNormal, "A new invoice is ready for you."}, true
	case domain.EventInvoicePaid:
		return rule{"invoice_paid", PriorityHigh, "Thank you, your payment has been received."}, true
	case domain.EventInvoiceOverdue:
		return rule{"invoice_overdue", PriorityHigh, "An invoice on your account is overdue."}, true
	case domain.EventContractSent:
		return rule{"contract_sent", PriorityNormal, "A contract is waiting for your signature."}, true
	case domain.EventContractSigned:
		return rule{"contract_signed", PriorityHigh, "Your contract has been signed."}, true
	case domain.EventTicketCreated:
		return rule{"ticket_created", PriorityNormal, "We have received your support ticket."}, true
	case domain.EventTicketReplied:
		return rule{"ticket_replied", PriorityNormal, "There is a new reply on your support ticket."}, true
	case domain.EventTicketResolved:
		return rule{"ticket_resolved", PriorityNormal, "Your support ticket has been resolved."}, true
	case domain.EventLeadCreated:
		return rule{"lead_created", PriorityNormal, "Thanks for getting in touch, we will be in contact shortly."}, true
	case domain.EventLeadConverted:
		return rule{"lead_converted", PriorityHigh, "Welcome aboard, your client account is ready."}, true
	case domain.EventClientCreated:
		return rule{"client_created", PriorityNormal, "Your client account has been created."}, true
	case domain.EventProjectCompleted:
		return rule{"project_completed", PriorityNormal, "Your project has been completed."}, true
	case domain.EventMessageReceived:
		return rule{"message_received", PriorityNormal, "You have a new message."}, true
	case domain.EventBookingCreated:
		return rule{"booking_created", PriorityNormal, "Your booking is confirmed."}, true
	}
	return rule{}, false
}
