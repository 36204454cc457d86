package service

import (
	"github.com/yndnr/petyard-go/internal/core/domain"
)

// SendMessage records a sealed message in both participants' chat logs.
func (r *Repository) SendMessage(senderID, receiverID, payload string) (domain.DirectMessage, error) {
	if senderID == receiverID {
		return domain.DirectMessage{}, domain.ErrInvalidArgument.WithDetails("cannot message yourself")
	}
	sender, err := r.user(senderID)
	if err != nil {
		return domain.DirectMessage{}, err
	}
	receiver, err := r.user(receiverID)
	if err != nil {
		return domain.DirectMessage{}, err
	}

	msg := domain.DirectMessage{
		Sender:    senderID,
		Receiver:  receiverID,
		Payload:   payload,
		Timestamp: r.clock.Now().UnixMilli(),
	}
	sender.ChatLogs[receiverID] = append(sender.ChatLogs[receiverID], msg)
	receiver.ChatLogs[senderID] = append(receiver.ChatLogs[senderID], msg)
	r.touch()
	return msg, nil
}

// Messages returns the conversation between userID and peerID in send order.
func (r *Repository) Messages(userID, peerID string) ([]domain.DirectMessage, error) {
	u, err := r.user(userID)
	if err != nil {
		return nil, err
	}
	return append([]domain.DirectMessage{}, u.ChatLogs[peerID]...), nil
}
