// Package session drives one fill of a form definition.
//
// A Session owns the state store and the validation trigger channel. Mounting
// a step creates one FieldOwner per field; owners record raw input, validate
// themselves when the channel names their step and keep dependent option
// lists in sync with their values. Next, Previous and Submit implement step
// navigation on top of the per step validity the owners report.
package session
