package ports

import "autotask-relay/internal/domain/model"

// LinkResolver builds a block-explorer link for an alert source.
// It reports false when the source does not carry enough information.
type LinkResolver interface {
	Resolve(secrets map[string]string, source *model.Source) (string, bool)
}
