/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package formbot

import (
	"github.com/google/uuid"
)

const (
	// FormPath relative path of the form endpoint
	FormPath  = "api/submit-form"
	FormTitle = "Título teste"
	FormText  = "Veja aqui você tem uma descrição genérica para sua atividade."
)

// FormSubmission is the payload of one form POST
type FormSubmission struct {
	UserID string `json:"UserID"`
	Title  string `json:"Title"`
	Text   string `json:"Text"`
}

// NewFormSubmission creates a submission with a fresh random UserID on every call
func NewFormSubmission() FormSubmission {
	return FormSubmission{
		UserID: uuid.New().String(),
		Title:  FormTitle,
		Text:   FormText,
	}
}
