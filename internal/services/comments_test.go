package services

import (
	"context"
	"net/http"
	"testing"

	"quill/internal/models"
	"quill/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type thread struct {
	svc        *CommentService
	alice, bob *models.User
	post       *models.Post
	parent     *models.Comment
	replyByBob *models.Comment
}

func newThread(t *testing.T) thread {
	t.Helper()
	ctx := context.Background()
	conn := newTestDB(t)
	th := thread{svc: NewCommentService(conn)}
	th.alice = newUser(t, conn, "alice", models.RoleAuthor)
	th.bob = newUser(t, conn, "bob", "")
	th.post = newPost(t, conn, th.alice)

	parent, err := th.svc.Create(ctx, th.post.ID, th.alice.ID, "parent body", "short")
	require.NoError(t, err)
	th.parent = &parent.Comment

	reply, err := th.svc.Reply(ctx, th.post.ID, th.parent.ID, th.bob.ID, "reply body", "")
	require.NoError(t, err)
	th.replyByBob = &reply.Comment
	return th
}

func TestReplyLinksIntoParent(t *testing.T) {
	ctx := context.Background()
	th := newThread(t)

	assert.Equal(t, th.post.ID, th.replyByBob.PostID)
	require.NotNil(t, th.replyByBob.ParentID)
	assert.Equal(t, th.parent.ID, *th.replyByBob.ParentID)

	second, err := th.svc.Reply(ctx, th.post.ID, th.parent.ID, th.alice.ID, "second reply", "")
	require.NoError(t, err)

	parent, err := th.svc.Get(ctx, th.post.ID, th.parent.ID, "")
	require.NoError(t, err)
	assert.Equal(t, []string{th.replyByBob.ID, second.Comment.ID}, parent.Comment.ChildComments())

	top, err := th.svc.List(ctx, th.post.ID, "", utils.ParsePage("", ""))
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, th.parent.ID, top[0].Comment.ID)
}

func TestReplyUnderWrongPost(t *testing.T) {
	th := newThread(t)
	_, err := th.svc.Reply(context.Background(), "3f1c6d2e-8c1a-4f59-9d7e-1a2b3c4d5e6f", th.parent.ID, th.bob.ID, "x", "")
	requireStatus(t, err, http.StatusNotFound)
}

func TestSoftDeleteMovesChildren(t *testing.T) {
	ctx := context.Background()
	th := newThread(t)

	requireStatus(t, th.svc.Delete(ctx, th.post.ID, th.parent.ID, th.bob.ID), http.StatusForbidden)
	require.NoError(t, th.svc.Delete(ctx, th.post.ID, th.parent.ID, th.alice.ID))

	parent, err := th.svc.Get(ctx, th.post.ID, th.parent.ID, "")
	require.NoError(t, err)
	c := parent.Comment
	assert.True(t, c.Deleted)
	assert.Equal(t, models.DeletedCommentBody, c.Body)
	assert.Empty(t, c.TLDR)
	assert.Empty(t, c.ChildComments())
	assert.Equal(t, []string{th.replyByBob.ID}, c.DetachedChildComments())

	// the reply keeps its dangling parent reference
	reply, err := th.svc.Get(ctx, th.post.ID, th.replyByBob.ID, "")
	require.NoError(t, err)
	require.NotNil(t, reply.Comment.ParentID)
	assert.Equal(t, th.parent.ID, *reply.Comment.ParentID)

	replies, err := th.svc.FindReplies(ctx, th.post.ID, th.parent.ID, "", utils.ParsePage("", ""))
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, th.replyByBob.ID, replies[0].Comment.ID)

	requireStatus(t, th.svc.Delete(ctx, th.post.ID, th.parent.ID, th.alice.ID), http.StatusBadRequest)

	_, err = th.svc.Reply(ctx, th.post.ID, th.parent.ID, th.bob.ID, "too late", "")
	requireStatus(t, err, http.StatusBadRequest)
}

func TestFindRepliesEmpty(t *testing.T) {
	ctx := context.Background()
	th := newThread(t)

	_, err := th.svc.FindReplies(ctx, th.post.ID, th.replyByBob.ID, "", utils.ParsePage("", ""))
	requireStatus(t, err, http.StatusNotFound)
}

func TestDeleteReply(t *testing.T) {
	ctx := context.Background()
	th := newThread(t)

	requireStatus(t, th.svc.DeleteReply(ctx, th.post.ID, th.parent.ID, th.replyByBob.ID, th.alice.ID), http.StatusForbidden)
	requireStatus(t, th.svc.DeleteReply(ctx, th.post.ID, th.replyByBob.ID, th.parent.ID, th.bob.ID), http.StatusNotFound)

	require.NoError(t, th.svc.DeleteReply(ctx, th.post.ID, th.parent.ID, th.replyByBob.ID, th.bob.ID))

	parent, err := th.svc.Get(ctx, th.post.ID, th.parent.ID, "")
	require.NoError(t, err)
	assert.Empty(t, parent.Comment.ChildComments())

	reply, err := th.svc.Get(ctx, th.post.ID, th.replyByBob.ID, "")
	require.NoError(t, err)
	assert.True(t, reply.Comment.Deleted)

	requireStatus(t, th.svc.DeleteReply(ctx, th.post.ID, th.parent.ID, th.replyByBob.ID, th.bob.ID), http.StatusNotFound)
}

func TestUpdateComment(t *testing.T) {
	ctx := context.Background()
	th := newThread(t)

	body := "edited"
	_, err := th.svc.Update(ctx, th.post.ID, th.parent.ID, th.bob.ID, CommentUpdate{Body: &body})
	requireStatus(t, err, http.StatusForbidden)

	d, err := th.svc.Update(ctx, th.post.ID, th.parent.ID, th.alice.ID, CommentUpdate{Body: &body})
	require.NoError(t, err)
	assert.Equal(t, "edited", d.Comment.Body)
	assert.Equal(t, "short", d.Comment.TLDR)
}

func TestCommentReactions(t *testing.T) {
	ctx := context.Background()
	th := newThread(t)

	outcome, d, err := th.svc.React(ctx, th.post.ID, th.parent.ID, th.bob.ID, models.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, ReactionAdded, outcome)
	assert.Equal(t, int64(1), d.Tally.Likes)

	liked, err := th.svc.LikedBy(ctx, th.bob.ID, utils.ParsePage("", ""))
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, th.parent.ID, liked[0].Comment.ID)

	require.NoError(t, th.svc.Delete(ctx, th.post.ID, th.replyByBob.ID, th.bob.ID))
	_, _, err = th.svc.React(ctx, th.post.ID, th.replyByBob.ID, th.alice.ID, models.ReactionDislike)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestCreateCommentOnMissingPost(t *testing.T) {
	th := newThread(t)
	_, err := th.svc.Create(context.Background(), "3f1c6d2e-8c1a-4f59-9d7e-1a2b3c4d5e6f", th.bob.ID, "hi", "")
	requireStatus(t, err, http.StatusNotFound)
}

func TestHiddenPostCommentsOnlyForAuthor(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	svc := NewCommentService(conn)
	alice := newUser(t, conn, "alice", models.RoleAuthor)
	bob := newUser(t, conn, "bob", "")

	hidden, err := NewPostService(conn, nil).Create(ctx, alice.ID, "Secret draft", "body", true)
	require.NoError(t, err)
	postID := hidden.Post.ID

	_, err = svc.Create(ctx, postID, bob.ID, "sneaky", "")
	requireStatus(t, err, http.StatusNotFound)

	own, err := svc.Create(ctx, postID, alice.ID, "note to self", "")
	require.NoError(t, err)
	commentID := own.Comment.ID

	_, err = svc.List(ctx, postID, "", utils.ParsePage("", ""))
	requireStatus(t, err, http.StatusNotFound)
	_, err = svc.List(ctx, postID, bob.ID, utils.ParsePage("", ""))
	requireStatus(t, err, http.StatusNotFound)
	_, err = svc.Get(ctx, postID, commentID, bob.ID)
	requireStatus(t, err, http.StatusNotFound)
	_, err = svc.Reply(ctx, postID, commentID, bob.ID, "sneaky reply", "")
	requireStatus(t, err, http.StatusNotFound)
	_, _, err = svc.React(ctx, postID, commentID, bob.ID, models.ReactionLike)
	requireStatus(t, err, http.StatusNotFound)

	_, err = svc.Reply(ctx, postID, commentID, alice.ID, "reply to self", "")
	require.NoError(t, err)
	_, err = svc.FindReplies(ctx, postID, commentID, bob.ID, utils.ParsePage("", ""))
	requireStatus(t, err, http.StatusNotFound)

	list, err := svc.List(ctx, postID, alice.ID, utils.ParsePage("", ""))
	require.NoError(t, err)
	assert.Len(t, list, 1)
	replies, err := svc.FindReplies(ctx, postID, commentID, alice.ID, utils.ParsePage("", ""))
	require.NoError(t, err)
	assert.Len(t, replies, 1)
}

func TestFindRepliesPastLastPage(t *testing.T) {
	th := newThread(t)

	_, err := th.svc.FindReplies(context.Background(), th.post.ID, th.parent.ID, "", utils.ParsePage("5", ""))
	requireStatus(t, err, http.StatusNotFound)
}
