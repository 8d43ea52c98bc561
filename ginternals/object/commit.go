package object

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gitcore/git-go/ginternals"
	"github.com/gitcore/git-go/internal/readutil"
	"golang.org/x/xerrors"
)

// ErrSignatureInvalid is an error thrown when the signature of a commit
// couldn't be parsed
var ErrSignatureInvalid = errors.New("commit signature is invalid")

// Signature represents the author/committer and time of a commit
type Signature struct {
	Time  time.Time
	Name  string
	Email string
}

// String returns a stringified version of the Signature:
// User Name <user.email@domain.tld> timestamp timezone
func (s Signature) String() string {
	b := strings.Builder{}
	b.WriteString(s.Name)
	b.WriteString(" <")
	b.WriteString(s.Email)
	b.WriteString("> ")
	b.WriteString(strconv.FormatInt(s.Time.Unix(), 10))
	b.WriteString(" ")
	b.WriteString(s.Time.Format("-0700"))
	return b.String()
}

// IsZero returns whether the signature has the zero value
func (s Signature) IsZero() bool {
	return s.Time.IsZero() && s.Name == "" && s.Email == ""
}

// NewSignature generates a signature at the current date and time
func NewSignature(name, email string) Signature {
	return Signature{
		Name:  name,
		Email: email,
		Time:  time.Now(),
	}
}

// NewSignatureFromBytes returns a signature from an array of bytes
//
// A signature has the following format:
// User Name <user.email@domain.tld> timestamp timezone
// Ex:
// John Doe <john@domain.tld> 1566115917 -0700
func NewSignatureFromBytes(b []byte) (Signature, error) {
	sig := Signature{}

	// First we get the name which will have the following format
	// "User Name " (with the extra space)
	data := readutil.ReadTo(b, '<')
	if len(data) == 0 {
		return sig, xerrors.Errorf("couldn't retrieve the name: %w", ErrSignatureInvalid)
	}
	sig.Name = strings.TrimSpace(string(data))
	offset := len(data) + 1 // +1 to skip the "<"
	if offset >= len(b) {
		return sig, xerrors.Errorf("signature stopped after the name: %w", ErrSignatureInvalid)
	}

	// Now we get the email, which is between "<" and ">"
	data = readutil.ReadTo(b[offset:], '>')
	if data == nil {
		return sig, xerrors.Errorf("couldn't retrieve the email: %w", ErrSignatureInvalid)
	}
	sig.Email = string(data)
	// +2 to skip the "> "
	offset += len(data) + 2
	if offset >= len(b) {
		return sig, xerrors.Errorf("signature stopped after the email: %w", ErrSignatureInvalid)
	}

	// Next is the timestamp and the timezone
	timestamp := readutil.ReadTo(b[offset:], ' ')
	if len(timestamp) == 0 {
		return sig, xerrors.Errorf("couldn't retrieve the timestamp: %w", ErrSignatureInvalid)
	}
	offset += len(timestamp) + 1 // +1 to skip the " "
	if offset >= len(b) {
		return sig, xerrors.Errorf("signature stopped after the timestamp: %w", ErrSignatureInvalid)
	}

	t, err := strconv.ParseInt(string(timestamp), 10, 64)
	if err != nil {
		return sig, xerrors.Errorf("invalid timestamp %s: %w", timestamp, ErrSignatureInvalid)
	}
	sig.Time = time.Unix(t, 0)

	// To get and set the timezone we can just parse the time with an
	// empty date and copy it over to the signature
	timezone := b[offset:]
	tz, err := time.Parse("-0700", string(timezone))
	if err != nil {
		return sig, xerrors.Errorf("invalid timezone format %s: %w", timezone, ErrSignatureInvalid)
	}
	sig.Time = sig.Time.In(tz.Location())
	return sig, nil
}

// CommitOptions represents all the optional data available to create
// a commit
type CommitOptions struct {
	Message string
	// Committer represents the person creating the commit.
	// If not provided, the author will be used as committer
	Committer Signature
	ParentsID []ginternals.Oid
}

// Commit represents a commit object
type Commit struct {
	rawObject *Object

	author    Signature
	committer Signature

	message string

	parentIDs []ginternals.Oid
	treeID    ginternals.Oid
}

// NewCommit creates a new Commit object.
// Any provided Oids won't be checked
func NewCommit(treeID ginternals.Oid, author Signature, opts *CommitOptions) *Commit {
	c := &Commit{
		treeID:    treeID,
		author:    author,
		committer: opts.Committer,
		message:   opts.Message,
		parentIDs: opts.ParentsID,
	}

	if c.committer.IsZero() {
		c.committer = author
	}
	// the payload is always terminated by a newline, even when the
	// message doesn't carry one
	if !strings.HasSuffix(c.message, "\n") {
		c.message += "\n"
	}
	c.rawObject = c.ToObject()

	return c
}

// NewCommitFromObject creates a commit from a raw object
//
// A commit has following format:
//
// tree {sha}
// parent {sha}
// author {author_name} <{author_email}> {author_date_seconds} {author_date_timezone}
// committer {committer_name} <{committer_email}> {committer_date_seconds} {committer_date_timezone}
// {a blank line}
// {commit message}
//
// Note:
// - A commit can have 0, 1, or many parent lines
//   The very first commit of a repo has no parents
//   A regular commit has 1 parent
//   A merge commit has 2 or more parents
func NewCommitFromObject(o *Object) (*Commit, error) {
	if o.typ != TypeCommit {
		return nil, xerrors.Errorf("type %s is not a commit: %w", o.typ, ErrObjectInvalid)
	}
	ci := &Commit{
		rawObject: o,
	}
	offset := 0
	objData := o.Bytes()
	for {
		line := readutil.ReadTo(objData[offset:], '\n')
		offset += len(line) + 1 // +1 to count the \n

		// If we didn't find anything then something is wrong
		if len(line) == 0 && offset == 1 {
			return nil, xerrors.Errorf("could not find commit first line: %w", ErrCommitInvalid)
		}

		// if we got an empty line, it means everything from now to the
		// end will be the commit message
		if len(line) == 0 {
			if offset < len(objData) {
				ci.message = string(objData[offset:])
			}
			break
		}

		// Otherwise we're getting a key/value pair, separated by a space
		kv := bytes.SplitN(line, []byte{' '}, 2)
		if len(kv) != 2 {
			return nil, xerrors.Errorf("could not parse header %q: %w", string(line), ErrCommitInvalid)
		}
		switch string(kv[0]) {
		case "tree":
			oid, err := ginternals.NewOidFromChars(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("could not parse tree id %#v: %w", kv[1], ErrCommitInvalid)
			}
			ci.treeID = oid
		case "parent":
			oid, err := ginternals.NewOidFromChars(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("could not parse parent id %#v: %w", kv[1], ErrCommitInvalid)
			}
			ci.parentIDs = append(ci.parentIDs, oid)
		case "author":
			sig, err := NewSignatureFromBytes(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("could not parse signature [%s]: %w", string(kv[1]), err)
			}
			ci.author = sig
		case "committer":
			sig, err := NewSignatureFromBytes(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("could not parse signature [%s]: %w", string(kv[1]), err)
			}
			ci.committer = sig
		}
	}

	return ci, nil
}

// ID returns the object's ID
func (c *Commit) ID() ginternals.Oid {
	return c.rawObject.ID()
}

// TreeID returns the ID of the commit's tree
func (c *Commit) TreeID() ginternals.Oid {
	return c.treeID
}

// ParentIDs returns the list of the commit's parents
func (c *Commit) ParentIDs() []ginternals.Oid {
	out := make([]ginternals.Oid, len(c.parentIDs))
	copy(out, c.parentIDs)
	return out
}

// Author returns the commit's author
func (c *Commit) Author() Signature {
	return c.author
}

// Committer returns the commit's committer
func (c *Commit) Committer() Signature {
	return c.committer
}

// Message returns the commit's message
func (c *Commit) Message() string {
	return c.message
}

// ToObject returns the underlying Object
func (c *Commit) ToObject() *Object {
	if c.rawObject != nil {
		return c.rawObject
	}

	// Quick reminder that the Write* methods on bytes.Buffer never fail,
	// the error returned is always nil
	buf := new(bytes.Buffer)
	buf.WriteString("tree ")
	buf.WriteString(c.treeID.String())
	buf.WriteByte('\n')

	for _, p := range c.parentIDs {
		buf.WriteString("parent ")
		buf.WriteString(p.String())
		buf.WriteByte('\n')
	}

	buf.WriteString("author ")
	buf.WriteString(c.author.String())
	buf.WriteByte('\n')

	buf.WriteString("committer ")
	buf.WriteString(c.committer.String())
	buf.WriteByte('\n')

	buf.WriteByte('\n')

	buf.WriteString(c.message)
	return New(TypeCommit, buf.Bytes())
}
