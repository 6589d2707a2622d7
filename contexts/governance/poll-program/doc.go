// Package pollprogram implements the poll program inside the governance
// context.
//
// The module owns poll creation, candidate registration and vote casting.
// Every record lives at an address derived from its logical key, and the
// record store refuses to create a record at an occupied address; that
// refusal is what keeps polls, candidate names and votes unique. Business
// rules stay in application/domain layers and storage sits behind ports.
package pollprogram
