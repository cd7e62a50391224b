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
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vertis-systems/orderchain/erp"
	"github.com/vertis-systems/orderchain/model"
)

// Date layouts on the two sides of the reconciliation. The ERP reports due
// dates as DD/MM/YYYY; seeded chain records use YYYY-MM-DD.
const (
	erpDateLayout   = "02/01/2006"
	chainDateLayout = "2006-01-02"
)

// ReconcileInstallments projects the financial stream, checks every unpaid
// installment against the external source, and writes the paid flag back to
// the chain for any that settled since the last read. Reads trigger writes;
// there is no background poller. The returned slice reflects the
// post-reconciliation state.
//
// A paid record is never re-checked and never rewritten, so repeated calls
// after settlement append nothing. Per-installment source failures are
// logged and skipped; one unreachable receivable does not hide the rest.
func (o *Orderchain) ReconcileInstallments(ctx context.Context) ([]model.Installment, error) {
	installments, _, err := o.reconcileInstallments(ctx)
	return installments, err
}

func (o *Orderchain) reconcileInstallments(ctx context.Context) ([]model.Installment, map[int64]*erp.Receivable, error) {
	installments, err := o.ProjectInstallments(ctx)
	if err != nil {
		return nil, nil, err
	}

	receivables := make(map[int64]*erp.Receivable)
	for i, installment := range installments {
		if installment.Paid {
			continue
		}
		receivable, err := o.source.Receivable(ctx, installment.ExternalID)
		if err != nil {
			logrus.Warnf("installment %d left unreconciled: %v", installment.ExternalID, err)
			continue
		}
		receivables[installment.ExternalID] = receivable
		if !receivable.Paid {
			continue
		}

		updated := installment
		updated.Paid = true
		updated.Key = ""
		payload, err := model.ToPayload(updated)
		if err != nil {
			return nil, nil, err
		}
		if _, err := o.ledger.Append(ctx, StreamFinancial, installment.Key, payload); err != nil {
			logrus.Warnf("installment %d paid flag not persisted: %v", installment.ExternalID, err)
			continue
		}
		updated.Key = installment.Key
		installments[i] = updated
		logrus.Infof("installment %d settled, paid flag written back", installment.ExternalID)
	}
	return installments, receivables, nil
}

// delinquencyAlerts runs a reconciliation pass and synthesizes one alert
// per unpaid installment whose due date has passed. The ERP due date is
// preferred; the chain record's own due date is the fallback when the
// source was unreachable or its date does not parse. Installments whose
// date parses on neither side are skipped.
func (o *Orderchain) delinquencyAlerts(ctx context.Context, now time.Time) ([]model.Alert, error) {
	installments, receivables, err := o.reconcileInstallments(ctx)
	if err != nil {
		return nil, err
	}

	var alerts []model.Alert
	for _, installment := range installments {
		if installment.Paid {
			continue
		}

		due, ok := installmentDueDate(installment, receivables[installment.ExternalID])
		if !ok {
			logrus.Warnf("installment %d has no parseable due date, skipping delinquency check", installment.ExternalID)
			continue
		}
		if !due.Before(now) {
			continue
		}

		alerts = append(alerts, model.Alert{
			Kind:      model.AlertOverdueAccount,
			Timestamp: due.Format(time.RFC3339),
			Message: fmt.Sprintf("A parcela %d venceu em %s e continua em aberto.",
				installment.ExternalID, due.Format(erpDateLayout)),
		})
	}
	return alerts, nil
}

func installmentDueDate(installment model.Installment, receivable *erp.Receivable) (time.Time, bool) {
	if receivable != nil {
		if due, err := time.Parse(erpDateLayout, receivable.DueDate); err == nil {
			return due, true
		}
	}
	if due, err := time.Parse(chainDateLayout, installment.DueDate); err == nil {
		return due, true
	}
	return time.Time{}, false
}
