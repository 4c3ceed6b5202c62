package history

import (
	"context"
	"fmt"
)

// Most recent delivery outcomes, newest first
func (mod *OutModule) RecentDeliveries(ctx context.Context, limit int) (deliveries []Delivery, err error) {
	if mod == nil {
		return
	}
	rows, err := mod.db.QueryContext(ctx,
		`SELECT recorded_at, receiver_id, sequence_id, command, outcome, latency_ms
		 FROM deliveries ORDER BY recorded_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		err = fmt.Errorf("failed to query deliveries: %w", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var delivery Delivery
		err = rows.Scan(&delivery.Timestamp, &delivery.Receiver, &delivery.Sequence,
			&delivery.Command, &delivery.Outcome, &delivery.LatencyMs)
		if err != nil {
			err = fmt.Errorf("failed to read delivery row: %w", err)
			return
		}
		deliveries = append(deliveries, delivery)
	}
	err = rows.Err()
	return
}

// Latest reading per sender
func (mod *OutModule) LatestStatuses(ctx context.Context) (statuses []Status, err error) {
	if mod == nil {
		return
	}
	rows, err := mod.db.QueryContext(ctx,
		`SELECT s.recorded_at, s.sender_id, s.frame_rssi, s.rssi, s.battery, s.status
		 FROM statuses s
		 WHERE s.id = (SELECT id FROM statuses WHERE sender_id = s.sender_id ORDER BY recorded_at DESC, id DESC LIMIT 1)
		 ORDER BY s.sender_id`)
	if err != nil {
		err = fmt.Errorf("failed to query statuses: %w", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var status Status
		err = rows.Scan(&status.Timestamp, &status.SenderID, &status.FrameRSSI,
			&status.RSSI, &status.Battery, &status.Code)
		if err != nil {
			err = fmt.Errorf("failed to read status row: %w", err)
			return
		}
		statuses = append(statuses, status)
	}
	err = rows.Err()
	return
}
