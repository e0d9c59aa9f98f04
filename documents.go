package sapling

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jward/sapling/internal/catalog"
	"github.com/jward/sapling/internal/lang"
	"github.com/jward/sapling/internal/store"
)

// Document is a named code tree in the workspace: a script, or the body of
// a user-defined function.
type Document struct {
	ID        ID
	Name      string
	Kind      string
	Root      CodeNode
	Hash      string
	UpdatedAt time.Time
}

// CreateScript adds an empty script.
func (e *Engine) CreateScript(name string) (*Document, error) {
	doc := &Document{ID: lang.NewID(), Name: name, Kind: store.KindScript, Root: lang.NewScript()}
	if err := e.createDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// CreateFunction adds a user-defined function with an empty body. The
// function is registered at once, so other documents can call it and its
// body sees args as locals.
func (e *Engine) CreateFunction(name string, args []ArgumentDefinition, returns Type) (*Document, *Function, error) {
	for i := range args {
		if args[i].ID == NilID {
			args[i].ID = lang.NewID()
		}
	}
	body := lang.NewBlock()
	doc := &Document{ID: body.NodeID, Name: name, Kind: store.KindFunction, Root: body}
	fn := &Function{
		ID:      lang.NewID(),
		Name:    name,
		Kind:    catalog.UserDefined,
		Args:    args,
		Returns: returns,
		CodeID:  body.NodeID,
	}
	if err := e.createDocument(doc); err != nil {
		return nil, nil, err
	}
	docID := doc.ID.String()
	rec, err := functionToRecord(fn, nil, &docID)
	if err != nil {
		return nil, nil, err
	}
	if err := e.store.UpsertFunction(rec); err != nil {
		return nil, nil, err
	}
	if err := e.registry.RegisterFunction(fn); err != nil {
		return nil, nil, err
	}
	return doc, fn, nil
}

func (e *Engine) createDocument(doc *Document) error {
	if doc.Name == "" {
		return fmt.Errorf("create document: missing name")
	}
	existing, err := e.store.DocumentByName(doc.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("create document %q: name already in use", doc.Name)
	}
	_, err = e.SaveDocument(doc)
	return err
}

// Document looks a document up by name, then by id.
func (e *Engine) Document(ref string) (*Document, error) {
	rec, err := e.store.DocumentByName(ref)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		if id, parseErr := uuid.Parse(ref); parseErr == nil {
			rec, err = e.store.DocumentByID(id.String())
			if err != nil {
				return nil, err
			}
		}
	}
	if rec == nil {
		return nil, fmt.Errorf("document %q: %w", ref, ErrDocumentNotFound)
	}
	return decodeDocument(rec)
}

// Documents lists every document ordered by name. An empty kind matches
// scripts and functions.
func (e *Engine) Documents(kind string) ([]*Document, error) {
	recs, err := e.store.ListDocuments(kind)
	if err != nil {
		return nil, err
	}
	docs := make([]*Document, 0, len(recs))
	for _, rec := range recs {
		doc, err := decodeDocument(rec)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func decodeDocument(rec *store.Document) (*Document, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("document %q: bad id: %w", rec.Name, err)
	}
	root, err := lang.UnmarshalNode([]byte(rec.Body))
	if err != nil {
		return nil, fmt.Errorf("document %q: %w", rec.Name, err)
	}
	return &Document{
		ID:        id,
		Name:      rec.Name,
		Kind:      rec.Kind,
		Root:      root,
		Hash:      rec.Hash,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

// SaveDocument persists doc. Saving an unchanged tree writes nothing and
// reports changed as false.
func (e *Engine) SaveDocument(doc *Document) (changed bool, err error) {
	if err := lang.ValidateIDs(doc.Root); err != nil {
		return false, fmt.Errorf("save %q: %w", doc.Name, err)
	}
	body, err := lang.MarshalNode(doc.Root)
	if err != nil {
		return false, fmt.Errorf("save %q: %w", doc.Name, err)
	}
	rec := &store.Document{
		ID:   doc.ID.String(),
		Name: doc.Name,
		Kind: doc.Kind,
		Body: string(body),
	}
	changed, err = e.store.SaveDocument(rec)
	if err != nil {
		return false, err
	}
	doc.Hash = rec.Hash
	doc.UpdatedAt = rec.UpdatedAt
	return changed, nil
}

// DeleteDocument removes a document. Deleting a function body also removes
// the function from the catalog; call sites elsewhere stop resolving.
func (e *Engine) DeleteDocument(ref string) error {
	doc, err := e.Document(ref)
	if err != nil {
		return err
	}
	fnRec, err := e.store.FunctionByDocument(doc.ID.String())
	if err != nil {
		return err
	}
	if err := e.store.DeleteDocument(doc.ID.String()); err != nil {
		return err
	}
	if fnRec != nil {
		if id, err := uuid.Parse(fnRec.ID); err == nil {
			e.registry.RemoveFunction(id)
		}
	}
	return nil
}

// OpenSession starts editing doc against the workspace catalog. The
// session works on its own copy of the tree; assign Session.Root back to
// doc.Root and save to keep the edits.
func (e *Engine) OpenSession(doc *Document) *Session {
	return NewSession(lang.Clone(doc.Root), e.registry)
}
