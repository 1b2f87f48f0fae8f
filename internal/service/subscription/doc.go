// Package subscription implements the mailing-list signup workflow.
//
// The service layer owns the two core operations: creating a pending
// subscriber with its confirmation token (committed only after the
// confirmation email is dispatched), and resolving a token back to a
// subscriber to mark it confirmed. It depends on the Store, UnitOfWork, and
// Mailer interfaces defined in this package and should never import from
// api/.
//
// Store implementations live in repository/postgres/; the production Mailer
// is the Postmark client in internal/postmark.
package subscription
