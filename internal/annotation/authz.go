package annotation

import (
	"collaborative-annotation-engine/internal/access"
)

// Authorization rules: the author of an entity may edit and delete it, and
// the document owner may moderate anything on their own document. The owner
// comparison uses the owner email captured on the annotation at creation
// time, for replies too (a reply carries no owner of its own).

func CanEditAnnotation(identity access.Identity, a *Annotation) bool {
	return identity.Email == a.AuthorEmail || identity.Email == a.OwnerEmail
}

func CanDeleteAnnotation(identity access.Identity, a *Annotation) bool {
	return CanEditAnnotation(identity, a)
}

func CanEditReply(identity access.Identity, parent *Annotation, r *Reply) bool {
	return identity.Email == r.AuthorEmail || identity.Email == parent.OwnerEmail
}

func CanDeleteReply(identity access.Identity, parent *Annotation, r *Reply) bool {
	return CanEditReply(identity, parent, r)
}
