/*
Copyright 2025 Orderchain Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package orderchain

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vertis-systems/orderchain/model"
)

// ListAlerts builds the consolidated feed: persisted review notes, a
// synthesized alert per delivery still awaiting shipment, and delinquency
// alerts from the financial reconciliation. Synthesized alerts are never
// stored; they disappear on their own once the underlying condition clears.
//
// The feed degrades partially: if one contributing source fails, its alerts
// are logged and omitted while the others still appear. Only a failure of
// the log itself fails the call.
func (o *Orderchain) ListAlerts(ctx context.Context) ([]model.Alert, error) {
	notes, err := o.ProjectNotes(ctx)
	if err != nil {
		return nil, err
	}

	alerts := make([]model.Alert, 0, len(notes))
	for _, note := range notes {
		alerts = append(alerts, model.Alert{
			Kind:      note.Kind,
			Timestamp: note.Timestamp,
			Message:   note.Message,
		})
	}

	shipment, err := o.newDeliveryAlerts(ctx)
	if err != nil {
		logrus.Warnf("delivery alerts omitted from feed: %v", err)
	} else {
		alerts = append(alerts, shipment...)
	}

	overdue, err := o.delinquencyAlerts(ctx, time.Now().UTC())
	if err != nil {
		logrus.Warnf("delinquency alerts omitted from feed: %v", err)
	} else {
		alerts = append(alerts, overdue...)
	}

	// Newest first. RFC 3339 strings order lexicographically; entries with
	// no timestamp sink to the end rather than floating to the top.
	sort.SliceStable(alerts, func(i, j int) bool {
		if (alerts[i].Timestamp == "") != (alerts[j].Timestamp == "") {
			return alerts[j].Timestamp == ""
		}
		return alerts[i].Timestamp > alerts[j].Timestamp
	})
	return alerts, nil
}

// newDeliveryAlerts synthesizes one alert per external delivery that has no
// chain record yet, meaning nobody has shipped it.
func (o *Orderchain) newDeliveryAlerts(ctx context.Context) ([]model.Alert, error) {
	toShip, err := o.ListToShip(ctx)
	if err != nil {
		return nil, err
	}

	var alerts []model.Alert
	for _, delivery := range toShip {
		alerts = append(alerts, model.Alert{
			Kind:      model.AlertNewDelivery,
			Timestamp: issuedAtTimestamp(delivery.IssuedAt),
			Message:   fmt.Sprintf("O romaneio %s aguarda envio.", delivery.ID),
		})
	}
	return alerts, nil
}

// issuedAtTimestamp normalizes an external issue date to RFC 3339 so it
// sorts with the rest of the feed. Unparseable dates yield "" and sort last.
func issuedAtTimestamp(issuedAt string) string {
	for _, layout := range []string{time.RFC3339, chainDateLayout, erpDateLayout} {
		if t, err := time.Parse(layout, issuedAt); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return ""
}
