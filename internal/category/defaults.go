package category

func leaves(names ...string) []Node {
	out := make([]Node, len(names))
	for i, n := range names {
		out[i] = Node{Name: n}
	}
	return out
}

var defaultTable = []Node{
	{Name: "요양사", Sub: []Node{
		{Name: "앱 사용법", Sub: leaves("회원가입", "로그인", "프로필 등록", "일자리 검색", "지원 내역")},
		{Name: "오류 문의", Sub: leaves("앱 실행 오류", "알림 미수신", "결제 오류", "기타 오류")},
		{Name: "불편 신고", Sub: leaves("기관 응대", "매칭 지연", "급여 정산")},
		{Name: "기타", Sub: leaves("제휴 문의", "탈퇴 요청", "기타")},
	}},
	{Name: "기관", Sub: []Node{
		{Name: "앱 사용법", Sub: leaves("기관 등록", "공고 등록", "요양사 검색", "계약 관리")},
		{Name: "오류 문의", Sub: leaves("공고 노출 오류", "결제 오류", "알림 미수신", "기타 오류")},
		{Name: "불편 신고", Sub: leaves("요양사 응대", "매칭 품질", "요금 정책")},
		{Name: "기타", Sub: leaves("제휴 문의", "해지 요청", "기타")},
	}},
	{Name: "아카데미", Sub: []Node{
		{Name: "수강 안내", Sub: leaves("과정 소개", "수강 신청", "수강료", "교육 일정")},
		{Name: "시험 및 자격", Sub: leaves("시험 접수", "합격 발표", "자격증 발급")},
		{Name: "오류 문의", Sub: leaves("영상 재생 오류", "출석 오류", "결제 오류")},
		{Name: "기타", Sub: leaves("환불 요청", "기타")},
	}},
	{Name: "일반", Sub: []Node{
		{Name: "일반", Sub: leaves("서비스 문의", "제휴 문의", "채용 문의", "기타")},
	}},
}

// Default returns the built-in taxonomy.
func Default() *Tree {
	return &Tree{roots: defaultTable}
}
